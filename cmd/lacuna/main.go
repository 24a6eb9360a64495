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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/lacuna"
	"github.com/poiesic/lacuna/ai"
	"github.com/poiesic/lacuna/ai/openai"
	"github.com/poiesic/lacuna/benchmark"
	"github.com/poiesic/lacuna/core"
	"github.com/poiesic/lacuna/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "lacuna",
		Usage: "Cross-lingual semantic topology engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before:   setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "Embed a concept set and report validation results",
				Action: validateCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
				),
			},
			{
				Name:   "project",
				Usage:  "Run the full analysis for one model and emit the topology",
				Action: projectCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file for the topology JSON (default stdout)",
					},
				),
			},
			{
				Name:   "benchmark",
				Usage:  "Benchmark several embedding models over one concept set",
				Action: benchmarkCommand,
				Flags: append(commonFlags(),
					&cli.StringSliceFlag{
						Name:     "model",
						Aliases:  []string{"m"},
						Usage:    "Embedding model name (repeatable)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "permutations",
						Usage: "Permutation trials for topology significance",
						Value: benchmark.DefaultPermutations,
					},
					&cli.StringFlag{
						Name:  "method",
						Usage: "Topology correlation method (spearman, pearson)",
						Value: benchmark.MethodSpearman,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Seed for permutation trials",
						Value: 1,
					},
					&cli.Float64Flag{
						Name:  "detection-distance",
						Usage: "Terrain distance beyond which a lacuna counts as detected",
						Value: benchmark.DefaultDetectionDistance,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file for the comparison JSON (default stdout)",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "Path to the concept set JSON file",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "cache",
			Usage: "Path to the BadgerDB embedding cache directory",
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum retry attempts for failed embedding calls",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
	}
}

func validateCommand(c *cli.Context) error {
	ctx := context.Background()

	set, err := loadConceptSet(c.String("input"))
	if err != nil {
		return err
	}

	model := c.String("embedding-model")
	engine, err := buildEngine(c, set, []string{model}, nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Analyze(ctx, model, set)
	if err != nil {
		return fmt.Errorf("validation run failed: %w", err)
	}

	report := validationDoc{
		Model:    result.ModelID,
		Total:    result.Stats.TotalConcepts,
		Valid:    result.Stats.ValidConcepts,
		Rejected: result.Stats.RejectedConcepts,
		Reasons:  result.Stats.RejectionReasons,
		Warnings: result.Stats.Warnings,
	}
	return writeJSON("", report)
}

func projectCommand(c *cli.Context) error {
	ctx := context.Background()

	set, err := loadConceptSet(c.String("input"))
	if err != nil {
		return err
	}

	model := c.String("embedding-model")
	engine, err := buildEngine(c, set, []string{model}, nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Analyze(ctx, model, set)
	if err != nil {
		return fmt.Errorf("analysis run failed: %w", err)
	}

	return writeJSON(c.String("output"), newTopologyDoc(set, result))
}

func benchmarkCommand(c *cli.Context) error {
	ctx := context.Background()

	set, err := loadConceptSet(c.String("input"))
	if err != nil {
		return err
	}

	benchConfig := benchmark.DefaultConfig()
	benchConfig.Permutations = c.Int("permutations")
	benchConfig.Method = strings.ToLower(c.String("method"))
	benchConfig.Seed = c.Int64("seed")
	benchConfig.DetectionDistance = c.Float64("detection-distance")

	if benchConfig.Method != benchmark.MethodSpearman && benchConfig.Method != benchmark.MethodPearson {
		return fmt.Errorf("invalid method %q: must be %s or %s",
			benchConfig.Method, benchmark.MethodSpearman, benchmark.MethodPearson)
	}

	engine, err := buildEngine(c, set, c.StringSlice("model"), benchConfig)
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := engine.Benchmark(ctx, set)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}
	if len(report.Metrics) == 0 {
		return fmt.Errorf("no models were available")
	}

	return writeJSON(c.String("output"), newComparisonDoc(report))
}

// buildEngine assembles providers for the named models and an engine around
// them, wiring the cache and a progress tracker sized to the set.
func buildEngine(c *cli.Context, set *core.ConceptSet, models []string, benchConfig *benchmark.Config) (*lacuna.Engine, error) {
	providers := make([]ai.Provider, 0, len(models))
	for _, model := range models {
		config := ai.NewConfig(
			ai.WithHost(c.String("embedding-host")),
			ai.WithModel(model),
		)
		provider, err := openai.NewProvider(config)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", model, err)
		}
		providers = append(providers, provider)
	}

	pipelineConfig := pipeline.DefaultConfig()
	pipelineConfig.RetryAttempts = c.Int("max-retries")
	pipelineConfig.RetryBaseDelay = c.Duration("retry-delay")

	total := len(set.Concepts) * len(set.Languages)
	progress := pipeline.NewProgressTracker(os.Stderr, total, 25)

	opts := []lacuna.EngineOption{
		lacuna.WithPipelineConfig(pipelineConfig),
		lacuna.WithProgress(progress),
	}
	if path := c.String("cache"); path != "" {
		opts = append(opts, lacuna.WithCachePath(path))
	}
	if benchConfig != nil {
		opts = append(opts, lacuna.WithBenchmarkConfig(benchConfig))
	}

	return lacuna.NewEngine(providers, opts...)
}

// conceptDoc is the JSON shape of one input concept. A missing confidence
// defaults to 1.0 so curated sets do not need to spell it out.
type conceptDoc struct {
	ID          string            `json:"id"`
	Labels      map[string]string `json:"labels"`
	Definitions map[string]string `json:"definitions,omitempty"`
	Cluster     string            `json:"cluster,omitempty"`
	Confidence  *float64          `json:"confidence,omitempty"`
	Ghost       map[string]bool   `json:"ghost,omitempty"`
	Hero        bool              `json:"hero,omitempty"`
	Source      string            `json:"source,omitempty"`
}

type conceptSetDoc struct {
	Languages []string      `json:"languages"`
	Reference string        `json:"reference"`
	Concepts  []*conceptDoc `json:"concepts"`
}

func loadConceptSet(path string) (*core.ConceptSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read concept set: %w", err)
	}

	var doc conceptSetDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse concept set: %w", err)
	}

	set := &core.ConceptSet{
		Languages: doc.Languages,
		Reference: doc.Reference,
	}
	for _, cd := range doc.Concepts {
		confidence := 1.0
		if cd.Confidence != nil {
			confidence = *cd.Confidence
		}
		set.Concepts = append(set.Concepts, &core.Concept{
			ID:          cd.ID,
			Labels:      cd.Labels,
			Definitions: cd.Definitions,
			Cluster:     cd.Cluster,
			Confidence:  confidence,
			Ghost:       cd.Ghost,
			Hero:        cd.Hero,
			Source:      cd.Source,
		})
	}

	if err := core.ValidateConceptSet(set); err != nil {
		return nil, err
	}
	return set, nil
}

type validationDoc struct {
	Model    string            `json:"model"`
	Total    int               `json:"total"`
	Valid    int               `json:"valid"`
	Rejected int               `json:"rejected"`
	Reasons  map[string]string `json:"reasons,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

type positionDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type conceptResultDoc struct {
	ID                string                 `json:"id"`
	Positions         map[string]positionDoc `json:"positions"`
	Weights           map[string]float64     `json:"weights"`
	CosineToReference map[string]float64     `json:"cosine_to_reference"`
	Clusters          map[string]int         `json:"clusters"`
	Lacuna            map[string]bool        `json:"lacuna"`
	Divergence        float64                `json:"divergence"`
}

type topologyDoc struct {
	Model     string              `json:"model"`
	Languages []string            `json:"languages"`
	Reference string              `json:"reference"`
	Dimension int                 `json:"dimension"`
	Concepts  []*conceptResultDoc `json:"concepts"`
	Stats     validationDoc       `json:"stats"`
}

func newTopologyDoc(set *core.ConceptSet, result *core.ModelResult) *topologyDoc {
	doc := &topologyDoc{
		Model:     result.ModelID,
		Languages: set.Languages,
		Reference: set.Reference,
		Dimension: result.Dimension,
		Stats: validationDoc{
			Model:    result.ModelID,
			Total:    result.Stats.TotalConcepts,
			Valid:    result.Stats.ValidConcepts,
			Rejected: result.Stats.RejectedConcepts,
			Reasons:  result.Stats.RejectionReasons,
			Warnings: result.Stats.Warnings,
		},
	}

	for _, id := range result.ConceptOrder {
		cr := result.Concepts[id]
		entry := &conceptResultDoc{
			ID:                id,
			Positions:         make(map[string]positionDoc, len(cr.Positions)),
			Weights:           cr.Weights,
			CosineToReference: cr.CosineToReference,
			Clusters:          cr.Clusters,
			Lacuna:            cr.Lacuna,
			Divergence:        cr.Divergence,
		}
		for lang, pos := range cr.Positions {
			entry.Positions[lang] = positionDoc{X: pos.X, Y: pos.Y}
		}
		doc.Concepts = append(doc.Concepts, entry)
	}
	return doc
}

type metricsDoc struct {
	Model           string             `json:"model"`
	CLAS            float64            `json:"clas"`
	CLASPairs       map[string]float64 `json:"clas_pairs,omitempty"`
	Topology        float64            `json:"topology"`
	Coherence       float64            `json:"coherence"`
	LacunaDetection float64            `json:"lacuna_detection"`
	Composite       float64            `json:"composite"`
}

type comparisonDoc struct {
	Models   []string                      `json:"models"`
	Skipped  []string                      `json:"skipped,omitempty"`
	Metrics  []*metricsDoc                 `json:"metrics"`
	Rankings map[string][]string           `json:"rankings"`
	Scores   map[string]map[string]float64 `json:"scores"`
}

func newComparisonDoc(report *lacuna.BenchmarkReport) *comparisonDoc {
	doc := &comparisonDoc{
		Models:   report.Comparison.Models,
		Skipped:  report.Skipped,
		Rankings: report.Comparison.Rankings,
		Scores:   report.Comparison.Scores,
	}
	for _, m := range report.Metrics {
		doc.Metrics = append(doc.Metrics, &metricsDoc{
			Model:           m.ModelID,
			CLAS:            m.CLAS.Average,
			CLASPairs:       m.CLAS.Pairs,
			Topology:        m.Topology.Average,
			Coherence:       m.Coherence.Average,
			LacunaDetection: m.LacunaDetection.Average,
			Composite:       m.Composite(),
		})
	}
	return doc
}

// writeJSON writes indented JSON to the given file, or to stdout when path
// is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
