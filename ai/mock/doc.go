// Package mock provides test doubles for the ai interfaces: a
// deterministic embedder and a provider whose availability can be scripted.
// Constructors return concrete types so tests can inject behavior and
// assert call counts.
package mock
