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


package openai

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/lacuna/ai"
)

// availabilityProbe is the text embedded when probing a provider.
const availabilityProbe = "ping"

// Provider implements ai.Provider for OpenAI-compatible services. The
// underlying embedder is created lazily on first use and memoized; the
// once guard makes concurrent first use safe.
type Provider struct {
	config *ai.Config
	logger *slog.Logger

	once     sync.Once
	embedder *Embedder
	initErr  error
}

// NewProvider creates a provider for an OpenAI-compatible service. The
// config is validated and normalized before use; the model itself is not
// contacted until the first embedding or availability call.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Provider{
		config: config,
		logger: slog.Default().With("component", "openai-provider", "model", config.Model),
	}, nil
}

// ModelID returns the model identifier results are keyed by.
func (p *Provider) ModelID() string {
	return p.config.Model
}

// ModelName returns the human-readable model name.
func (p *Provider) ModelName() string {
	return p.config.DisplayName
}

// Embedder returns the embedding service, loading it on first call.
func (p *Provider) Embedder() ai.Embedder {
	return embedderHandle{provider: p}
}

// Available probes the service with a one-token embedding request and
// reports whether it responded.
func (p *Provider) Available(ctx context.Context) bool {
	if err := p.load(); err != nil {
		p.logger.Warn("provider unavailable", "err", err)
		return false
	}
	if _, err := p.embedder.EmbedText(ctx, availabilityProbe); err != nil {
		p.logger.Warn("provider probe failed", "err", err)
		return false
	}
	return true
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}

func (p *Provider) load() error {
	p.once.Do(func() {
		p.embedder, p.initErr = newEmbedder(p.config)
	})
	return p.initErr
}

// embedderHandle defers provider loading to the first embedding call.
type embedderHandle struct {
	provider *Provider
}

func (h embedderHandle) EmbedText(ctx context.Context, text string) ([]float64, error) {
	if err := h.provider.load(); err != nil {
		return nil, err
	}
	return h.provider.embedder.EmbedText(ctx, text)
}

func (h embedderHandle) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if err := h.provider.load(); err != nil {
		return nil, err
	}
	return h.provider.embedder.EmbedTexts(ctx, texts)
}
