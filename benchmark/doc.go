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


// Package benchmark scores embedding models against each other over a
// shared concept set: cross-lingual alignment (CLAS), topology preservation
// with permutation significance testing, cluster coherence, and curated
// lacuna detection, rolled up into per-metric and composite rankings.
// Permutation trials fan out over a worker pool; everything else is a pure
// function of the model outputs.
package benchmark
