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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidConcept indicates a Concept failed validation.
	ErrInvalidConcept = errors.New("invalid concept")

	// ErrInvalidConceptSet indicates a ConceptSet failed validation.
	ErrInvalidConceptSet = errors.New("invalid concept set")

	// ErrEmptyConceptID indicates the concept ID field is empty.
	ErrEmptyConceptID = errors.New("concept id cannot be empty")

	// ErrNoLabels indicates a concept carries no display labels.
	ErrNoLabels = errors.New("concept must have at least one label")

	// ErrInvalidConfidence indicates a confidence score outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be in [0, 1]")

	// ErrNoLanguages indicates a concept set without languages.
	ErrNoLanguages = errors.New("concept set must name at least one language")

	// ErrUnknownReference indicates a reference language missing from the
	// set's language list.
	ErrUnknownReference = errors.New("reference language not in language list")

	// ErrDuplicateConceptID indicates two concepts in a set share an ID.
	ErrDuplicateConceptID = errors.New("duplicate concept id")
)
