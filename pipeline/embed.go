package pipeline

import (
	"context"
	"sync"

	"github.com/poiesic/lacuna/ai"
	"github.com/poiesic/lacuna/core"
)

// embed fills the concept set's embeddings for every (concept, language)
// pair that has text, consulting the cache first and batching the rest
// through the provider. Languages run in parallel over the worker pool.
// A concept with no label or definition in a language is skipped with a
// warning; the pipeline degrades to partial coverage instead of failing.
func (p *Pipeline) embed(ctx context.Context, provider ai.Provider, set *core.ConceptSet) error {
	embedder := provider.Embedder()
	model := provider.ModelID()

	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make([]error, len(set.Languages))

	for i, lang := range set.Languages {
		i, lang := i, lang
		wg.Add(1)
		task := func() {
			defer wg.Done()
			errs[i] = p.embedLanguage(ctx, embedder, model, set, lang, &mu)
		}
		if err := p.pool.Submit(task); err != nil {
			// Pool closed or overloaded; run inline.
			task()
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) embedLanguage(ctx context.Context, embedder ai.Embedder, model string, set *core.ConceptSet, lang string, mu *sync.Mutex) error {
	var ids, texts []string
	for _, c := range set.Concepts {
		if c == nil || c.ID == "" {
			continue
		}

		text := embeddingText(c, lang)
		if text == "" {
			p.logger.Warn("no text for concept in language, skipping",
				"concept", c.ID, "language", lang)
			continue
		}

		if p.cache != nil {
			if cached, err := p.cache.Get(ctx, model, lang, c.ID); err == nil {
				mu.Lock()
				set.SetEmbedding(lang, c.ID, cached.Vector)
				mu.Unlock()
				p.trackProgress(1)
				continue
			}
		}

		ids = append(ids, c.ID)
		texts = append(texts, text)
	}

	if len(texts) == 0 {
		return nil
	}

	var vectors [][]float64
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.config.RetryAttempts, p.config.RetryBaseDelay)
	if err != nil {
		return err
	}

	for i, id := range ids {
		if i >= len(vectors) || len(vectors[i]) == 0 {
			p.logger.Warn("provider returned no vector", "concept", id, "language", lang)
			continue
		}

		mu.Lock()
		set.SetEmbedding(lang, id, vectors[i])
		mu.Unlock()
		p.trackProgress(1)

		if p.cache != nil {
			cacheErr := p.cache.Put(ctx, &core.CachedEmbedding{
				Model:     model,
				Language:  lang,
				ConceptId: id,
				Vector:    vectors[i],
			})
			if cacheErr != nil {
				p.logger.Error("failed to cache embedding",
					"concept", id, "language", lang, "err", cacheErr)
			}
		}
	}

	p.logger.Debug("language embedded", "language", lang, "fresh", len(texts))
	return nil
}

// embeddingText picks the text embedded for a (concept, language) pair:
// the definition when present, the display label otherwise.
func embeddingText(c *core.Concept, language string) string {
	if c.Definitions != nil {
		if def, ok := c.Definitions[language]; ok && def != "" {
			return def
		}
	}
	if c.Labels != nil {
		return c.Labels[language]
	}
	return ""
}

func (p *Pipeline) trackProgress(delta int) {
	if p.progress != nil {
		p.progress.Increment(delta)
	}
}
