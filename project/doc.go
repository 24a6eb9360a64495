// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package project reduces per-language embedding matrices to shared 2D
// terrain layouts. Each language is reduced independently with a
// neighborhood-graph embedding over the cosine metric; the reference
// language is scaled into the terrain extent and the remaining languages
// are mapped onto its frame with an orthogonal Procrustes transform, so
// positions are comparable across languages.
package project
