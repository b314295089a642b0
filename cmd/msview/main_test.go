package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/msview/dataset"
)

const testAcquisition = `{
  "retention_time": [100, 200],
  "mass_to_charge": [[50.1, 50.9], []],
  "signal": [[10, 20], []]
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func importTestData(t *testing.T) (dbPath, id string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "test.db")
	file := filepath.Join(dir, "run1.json")
	require.NoError(t, os.WriteFile(file, []byte(testAcquisition), 0o644))

	out, err := run(t, "import", "--db", dbPath, "--name", "run 1", file)
	require.NoError(t, err)
	id = strings.TrimSpace(out)
	require.NotEmpty(t, id)
	return dbPath, id
}

func TestImportAndList(t *testing.T) {
	dbPath, id := importTestData(t)

	out, err := run(t, "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, id+"\trun 1\t2 scans\t2 peaks\n", out)
}

func TestImportRejectsInvalidAcquisition(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"retention_time":[1],"mass_to_charge":[[1,2]],"signal":[[1]]}`), 0o644))

	_, err := run(t, "import", "--db", filepath.Join(dir, "test.db"), file)
	assert.ErrorIs(t, err, dataset.ErrDataInvariant)
}

func TestShowGroupedByScan(t *testing.T) {
	dbPath, id := importTestData(t)

	out, err := run(t, "show", "--db", dbPath, "--id", id, "--filter-null")
	require.NoError(t, err)

	var got struct {
		Kind    string `json:"kind"`
		Rows    int    `json:"rows"`
		Columns []struct {
			Name   string          `json:"name"`
			Values json.RawMessage `json:"values"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "grouped_by_scan", got.Kind)
	assert.Equal(t, 1, got.Rows)

	values := map[string]string{}
	for _, c := range got.Columns {
		values[c.Name] = string(c.Values)
	}
	assert.Equal(t, "[100]", values["retention_time"])
	assert.Equal(t, "[50.1]", values["mass_to_charge.Min"])
	assert.Equal(t, "[30]", values["signal.Sum"])
}

func TestShowNullAggregates(t *testing.T) {
	dbPath, id := importTestData(t)

	out, err := run(t, "show", "--db", dbPath, "--id", id, "--format", "jsonl")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var row map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &row))
	assert.Equal(t, float64(200), row["retention_time"])
	assert.Nil(t, row["mass_to_charge.Min"])
	assert.Equal(t, float64(0), row["signal.Sum"])
}

func TestShowFlattenedJSONL(t *testing.T) {
	dbPath, id := importTestData(t)

	out, err := run(t, "show", "--db", dbPath, "--id", id, "--explode", "--sort", "mass-to-charge", "--format", "jsonl")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, float64(0), first["index"])
	assert.Equal(t, float64(10), first["signal"])
}

func TestShowSettingsFile(t *testing.T) {
	dbPath, id := importTestData(t)
	settingsPath := filepath.Join(t.TempDir(), "view.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("sort: mass_to_charge\n"), 0o644))

	out, err := run(t, "show", "--db", dbPath, "--id", id, "--settings", settingsPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "grouped_by_bucket"`)
}

func TestShowSpectraArrow(t *testing.T) {
	dbPath, id := importTestData(t)

	out, err := run(t, "show", "--db", dbPath, "--id", id, "--view", "spectra", "--format", "arrow")
	require.NoError(t, err)

	r, err := ipc.NewReader(strings.NewReader(out))
	require.NoError(t, err)
	defer r.Release()

	require.True(t, r.Next())
	rec := r.Record()
	assert.Equal(t, int64(1), rec.NumRows())
	assert.Equal(t, "mass_spectrum", rec.ColumnName(1))
}

func TestShowErrors(t *testing.T) {
	dbPath, id := importTestData(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown acquisition", []string{"show", "--db", dbPath, "--id", "missing"}},
		{"bad format", []string{"show", "--db", dbPath, "--id", id, "--format", "csv"}},
		{"bad view", []string{"show", "--db", dbPath, "--id", id, "--view", "chart"}},
		{"bad sort", []string{"show", "--db", dbPath, "--id", id, "--sort", "intensity"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestDelete(t *testing.T) {
	dbPath, id := importTestData(t)

	_, err := run(t, "delete", "--db", dbPath, "--id", id)
	require.NoError(t, err)

	out, err := run(t, "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = run(t, "delete", "--db", dbPath, "--id", id)
	assert.ErrorIs(t, err, dataset.ErrNotFound)
}
