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


package project

import "errors"

var (
	// ErrUnknownReferenceLanguage indicates the reference language has no
	// embedding matrix.
	ErrUnknownReferenceLanguage = errors.New("reference language not in input")

	// ErrRowMismatch indicates the per-language matrices are not in row
	// correspondence.
	ErrRowMismatch = errors.New("language matrices have mismatched row counts")
)
