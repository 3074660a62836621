package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-annotator/internal/comparator"
	"survey-annotator/internal/config"
	"survey-annotator/internal/storage"
)

func execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestApplyFlagOverrides(t *testing.T) {
	require.NoError(t, rootCmd.ParseFlags([]string{"--api-key", "flag-key", "--model", "llama-test", "--delay", "2s", "--mode", "json_object"}))

	cfg := &config.AppConfig{
		Groq:     config.GroqConfig{APIKey: "env-key", Model: "env-model"},
		Annotate: config.AnnotateConfig{Delay: time.Second, StructuredMode: config.ModeJSONSchema},
	}
	applyFlagOverrides(rootCmd, cfg)

	assert.Equal(t, "flag-key", cfg.Groq.APIKey)
	assert.Equal(t, "llama-test", cfg.Groq.Model)
	assert.Equal(t, 2*time.Second, cfg.Annotate.Delay)
	assert.Equal(t, config.ModeJSONObject, cfg.Annotate.StructuredMode)
}

func TestShowSavedRun(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewStore(dir)
	_, err := store.SaveRun(&storage.RunResult{
		RunID:      "abc",
		Model:      "llama-test",
		Agreements: []comparator.Agreement{{Rater: comparator.RaterWG, Matches: 4, Comparable: 5, Percent: 80}},
	})
	require.NoError(t, err)

	assert.NoError(t, execute("runs", "--results-dir", dir))
	assert.NoError(t, execute("show", "abc", "--results-dir", dir))
	assert.Error(t, execute("show", "missing", "--results-dir", dir))
}
