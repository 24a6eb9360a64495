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


// Package vector is the similarity kernel shared by every stage of the
// engine: cosine similarity and distance matrices, duplicate detection, and
// k-nearest-neighbor queries over raw embedding sets.
//
// All functions are pure and safe for concurrent use. Zero vectors are
// tolerated everywhere via a small epsilon in cosine denominators.
package vector
