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


// Package validate filters candidate concept sets through a fixed sequence
// of quality gates before any topology work happens:
//
//  1. malformed-input and extraction-confidence checks
//  2. externally supplied semantic-coherence rejections
//  3. per-language duplicate detection
//  4. uniformity diagnostic (warning only)
//  5. cross-language similarity ceiling
//  6. extremity against an optional reference set
//
// Earlier rejections pre-empt later compute, and the first applicable
// rejection reason wins when several gates would fire for one concept.
package validate
