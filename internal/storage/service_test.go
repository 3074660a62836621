package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-annotator/internal/annotator"
	"survey-annotator/internal/comparator"
	"survey-annotator/internal/dataset"
)

func TestStore_SaveLoadList(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "results"))

	runs, err := store.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	result := &RunResult{
		Model:       "llama",
		Source:      Source{File: "survey.xlsx", Sheet: "Sheet1", SampleSize: 1},
		Records:     []dataset.Response{{ID: "R_1", FreeText: "texte", WG: dataset.NewLabel("1")}},
		Annotations: []annotator.Annotation{{TextID: 0, Text: "texte", Reasoning: "r", Answer: "1"}},
		Agreements:  []comparator.Agreement{{Rater: comparator.RaterWG, Matches: 1, Comparable: 1, Percent: 100}},
	}

	path, err := store.SaveRun(result)
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)
	assert.FileExists(t, path)

	loaded, err := store.LoadRun(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, result.Records, loaded.Records)
	assert.Equal(t, result.Annotations, loaded.Annotations)
	assert.Equal(t, result.Agreements, loaded.Agreements)

	runs, err = store.ListRuns()
	require.NoError(t, err)
	assert.Equal(t, []string{result.RunID}, runs)
}

func TestStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run_b.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run_a.json"), []byte("{}"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "run_dir.json"), 0755))

	runs, err := NewStore(dir).ListRuns()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, runs)
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := NewStore(t.TempDir()).LoadRun("nope")
	assert.Error(t, err)
}
