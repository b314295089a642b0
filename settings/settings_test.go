package settings

import (
	"encoding/json"
	"testing"

	"github.com/psanford/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSortAxis(t *testing.T) {
	tests := []struct {
		input    string
		expected SortAxis
	}{
		{"retention_time", ByRetentionTime},
		{"RetentionTime", ByRetentionTime},
		{"retention-time", ByRetentionTime},
		{"Retention time", ByRetentionTime},
		{"rt", ByRetentionTime},
		{"mass_to_charge", ByMassToCharge},
		{"MassToCharge", ByMassToCharge},
		{"mass-to-charge", ByMassToCharge},
		{"mz", ByMassToCharge},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSortAxis(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseSortAxis("intensity")
	assert.Error(t, err)
}

func TestParseTimeUnits(t *testing.T) {
	tests := []struct {
		input    string
		expected TimeUnits
	}{
		{"ms", Millisecond},
		{"Milliseconds", Millisecond},
		{"second", Second},
		{"s", Second},
		{"Minute", Minute},
		{"min", Minute},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeUnits(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseTimeUnits("hour")
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	s := Default()
	assert.False(t, s.Explode)
	assert.False(t, s.FilterNull)
	assert.Equal(t, ByRetentionTime, s.Sort)
	assert.Equal(t, 1, s.MassToCharge.Precision)
	assert.Equal(t, 2, s.RetentionTime.Precision)
	assert.Equal(t, Second, s.RetentionTime.Units)
	assert.Equal(t, "s", s.RetentionTime.Units.Abbreviation())
}

func TestLoadFromFS(t *testing.T) {
	fsys := memfs.New()
	err := fsys.MkdirAll("panes", 0o755)
	require.NoError(t, err)
	err = fsys.WriteFile("panes/table.yaml", []byte(`
explode: true
filter_null: true
sort: MassToCharge
retention_time:
  units: minute
legend: true
`), 0o644)
	require.NoError(t, err)

	s, err := Load(fsys, "panes/table.yaml")
	require.NoError(t, err)
	assert.True(t, s.Explode)
	assert.True(t, s.FilterNull)
	assert.Equal(t, ByMassToCharge, s.Sort)
	assert.Equal(t, Minute, s.RetentionTime.Units)
	assert.True(t, s.Legend)
	// Untouched fields keep their defaults
	assert.Equal(t, 2, s.RetentionTime.Precision)
	assert.Equal(t, 1, s.MassToCharge.Precision)

	_, err = Load(fsys, "panes/missing.yaml")
	assert.Error(t, err)
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"unknown sort":       "sort: intensity\n",
		"unknown units":      "retention_time:\n  units: hours\n",
		"negative precision": "mass_to_charge:\n  precision: -1\n",
		"not yaml":           "explode: [\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestSettingsEncodeAxisByName(t *testing.T) {
	s := Default()
	s.Sort = ByMassToCharge

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sort":"mass_to_charge"`)
	assert.Contains(t, string(data), `"units":"second"`)

	var decoded Settings
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}
