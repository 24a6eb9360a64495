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


// Package storage provides the embedding-cache abstraction layer.
//
// Embedding the same concept set against the same model is expensive and
// deterministic, so the pipeline consults an EmbeddingCache before calling
// a provider and writes fresh vectors back afterwards. The interface
// decouples the numeric pipeline from the backend; storage/badger supplies
// the production implementation, and an in-memory instance of the same
// backend serves tests.
//
// Public constructors return interface types to keep callers decoupled from
// the backend; internal constructors may return concrete types.
//
// All implementations must be thread-safe, and every method accepts a
// context.Context for cancellation.
package storage
