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

import "fmt"

// ValidateConcept validates a Concept according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - at least one display label must be present
//   - Confidence must be in [0, 1]
//
// NOT validated (populated downstream):
//   - Definitions (a concept may lack a definition in some languages;
//     such (concept, language) pairs are skipped with a warning)
//   - Cluster (empty means uncurated; the cluster assigner fills it in)
//
// A concept that fails these checks is a malformed collaborator input and
// must be treated as a validation rejection, never injected into the
// numeric pipeline.
func ValidateConcept(concept *Concept) error {
	if concept == nil {
		return fmt.Errorf("%w: concept is nil", ErrInvalidConcept)
	}

	if concept.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyConceptID)
	}

	if len(concept.Labels) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrNoLabels)
	}

	if concept.Confidence < 0 || concept.Confidence > 1 {
		return fmt.Errorf("%w: %w: %v", ErrInvalidConcept, ErrInvalidConfidence, concept.Confidence)
	}

	return nil
}

// ValidateConceptSet validates a ConceptSet's structure.
//
// Validation rules:
//   - at least one language
//   - the reference language must appear in the language list
//   - concept IDs must be unique within the set
//
// Individual concepts are NOT validated here; the quality validator handles
// them one by one so a single malformed concept degrades to a rejection
// rather than failing the whole run.
func ValidateConceptSet(set *ConceptSet) error {
	if set == nil {
		return fmt.Errorf("%w: set is nil", ErrInvalidConceptSet)
	}

	if len(set.Languages) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConceptSet, ErrNoLanguages)
	}

	found := false
	for _, lang := range set.Languages {
		if lang == set.Reference {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConceptSet, ErrUnknownReference, set.Reference)
	}

	seen := make(map[string]bool, len(set.Concepts))
	for _, c := range set.Concepts {
		if c == nil {
			continue
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: %w: %q", ErrInvalidConceptSet, ErrDuplicateConceptID, c.ID)
		}
		seen[c.ID] = true
	}

	return nil
}
