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


// Package ai provides abstractions for the embedding models under
// benchmark.
//
// Each model is a Provider: an Embedder plus identity and an availability
// probe. Providers load their model lazily and memoize it, so construction
// is cheap and the first embedding call pays the load cost. The Registry is
// a fixed provider mapping built once at startup; there is no dynamic
// provider lookup beyond it.
//
// Implementation sub-packages:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types to enforce abstraction; mock constructors return concrete
// types so tests can inject behavior and assert call counts.
package ai
