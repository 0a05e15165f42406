package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadingsCSV(t *testing.T) {
	input := `timestamp,level
2025-07-14 06:00,90
2025-07-14 07:00,81
2025-07-14 08:00:00,72.9
`
	readings, err := ParseReadingsCSV(strings.NewReader(input), "Varanasi")
	require.NoError(t, err)

	require.Len(t, readings, 3)
	assert.Equal(t, []float64{90, 81, 72.9}, []float64{readings[0].Level, readings[1].Level, readings[2].Level})
	assert.Equal(t, time.Date(2025, time.July, 14, 8, 0, 0, 0, time.UTC), readings[2].Timestamp)
}

func TestParseReadingsCSVWithoutHeader(t *testing.T) {
	readings, err := ParseReadingsCSV(strings.NewReader("2025-07-14 07:00,81\n2025-07-14 06:00,90\n"), "Haridwar")
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 90.0, readings[0].Level)
}

func TestParseReadingsCSVErrors(t *testing.T) {
	for name, input := range map[string]string{
		"bad timestamp": "yesterday,81\n",
		"bad level":     "2025-07-14 06:00,high\n",
		"one column":    "2025-07-14 06:00\n",
		"infinite":      "2025-07-14 06:00,Inf\n",
	} {
		_, err := ParseReadingsCSV(strings.NewReader(input), "Varanasi")
		assert.Error(t, err, name)
	}
}

func TestLoadReadingsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hourly_water_levels.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,level\n2025-07-14 06:00,60.5\n"), 0644))

	readings, err := LoadReadingsCSV(path, "Prayagraj")
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "Prayagraj", readings[0].Location)

	_, err = LoadReadingsCSV(filepath.Join(t.TempDir(), "missing.csv"), "Prayagraj")
	assert.Error(t, err)
}
