package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestCommonFlags(t *testing.T) {
	flags := commonFlags()

	t.Run("input is required", func(t *testing.T) {
		var inputFlag *cli.StringFlag
		for _, flag := range flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "input" {
				inputFlag = f
				break
			}
		}
		require.NotNil(t, inputFlag)
		assert.True(t, inputFlag.Required)
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		var hostFlag *cli.StringFlag
		for _, flag := range flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "embedding-host" {
				hostFlag = f
				break
			}
		}
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("cache is optional", func(t *testing.T) {
		var cacheFlag *cli.StringFlag
		for _, flag := range flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "cache" {
				cacheFlag = f
				break
			}
		}
		require.NotNil(t, cacheFlag)
		assert.False(t, cacheFlag.Required)
		assert.Empty(t, cacheFlag.Value)
	})

	t.Run("max-retries has default value of 3", func(t *testing.T) {
		var retriesFlag *cli.IntFlag
		for _, flag := range flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "max-retries" {
				retriesFlag = f
				break
			}
		}
		require.NotNil(t, retriesFlag)
		assert.Equal(t, 3, retriesFlag.Value)
	})
}

func TestLoadConceptSet(t *testing.T) {
	writeInput := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "concepts.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("valid set", func(t *testing.T) {
		path := writeInput(t, `{
			"languages": ["en", "de"],
			"reference": "en",
			"concepts": [
				{
					"id": "saudade",
					"labels": {"en": "saudade", "de": "Sehnsucht"},
					"definitions": {"en": "a deep longing", "de": "tiefe Sehnsucht"},
					"confidence": 0.9,
					"cluster": "emotion"
				},
				{
					"id": "hygge",
					"labels": {"en": "hygge", "de": "Gemuetlichkeit"}
				}
			]
		}`)

		set, err := loadConceptSet(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"en", "de"}, set.Languages)
		assert.Equal(t, "en", set.Reference)
		require.Len(t, set.Concepts, 2)
		assert.Equal(t, 0.9, set.Concepts[0].Confidence)
		assert.Equal(t, "emotion", set.Concepts[0].Cluster)
		assert.Equal(t, 1.0, set.Concepts[1].Confidence, "missing confidence defaults to 1")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConceptSet(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read")
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeInput(t, `{"languages": [`)
		_, err := loadConceptSet(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("reference not in languages", func(t *testing.T) {
		path := writeInput(t, `{"languages": ["en"], "reference": "fr", "concepts": []}`)
		_, err := loadConceptSet(path)
		require.Error(t, err)
	})
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	err := writeJSON(path, map[string]int{"answer": 42})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"answer": 42`)
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "invalid")
	})
}

func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()
	os.Exit(code)
}
