package ai

import "context"

// Registry is a fixed mapping from model ID to provider, built once at
// startup. It replaces any dynamic lookup-by-string plumbing: the set of
// providers is closed after construction.
type Registry struct {
	order     []string
	providers map[string]Provider
}

// NewRegistry builds a registry from the given providers, preserving their
// order. A later provider with a duplicate ModelID replaces the earlier one.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if _, seen := r.providers[p.ModelID()]; !seen {
			r.order = append(r.order, p.ModelID())
		}
		r.providers[p.ModelID()] = p
	}
	return r
}

// Get returns the provider registered under the model ID.
func (r *Registry) Get(modelID string) (Provider, bool) {
	p, ok := r.providers[modelID]
	return p, ok
}

// All returns every registered provider in registration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.providers[id])
	}
	return out
}

// Available returns the providers that respond to an availability probe,
// in registration order.
func (r *Registry) Available(ctx context.Context) []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, p := range r.All() {
		if p.Available(ctx) {
			out = append(out, p)
		}
	}
	return out
}

// Close closes every registered provider, returning the first error.
func (r *Registry) Close() error {
	var first error
	for _, p := range r.All() {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
