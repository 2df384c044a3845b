package archive

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paretosim/optimization-core/internal/ensemble"
	"github.com/paretosim/optimization-core/internal/evolve"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestNewWriterValidation(t *testing.T) {
	_, err := NewWriter("", nil)
	require.Error(t, err)
}

func TestWriteGeneration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run-1")
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)
	require.Equal(t, dir, w.Dir())

	pop, err := ensemble.NewTable([]string{"x1", "x2"})
	require.NoError(t, err)
	require.NoError(t, pop.Append("member-0", map[string]float64{"x1": 1.5, "x2": -2}))
	require.NoError(t, pop.Append("member-1", map[string]float64{"x1": 0.25, "x2": 3}))

	scores := []evolve.MemberScore{
		{
			Member:   "member-0",
			Values:   map[string]float64{"f1": 1, "f2": 2},
			Feasible: true,
			Front:    0,
			Crowding: math.Inf(1),
		},
		{
			Member:    "member-1",
			Values:    map[string]float64{"f1": 4, "f2": 0.5},
			Feasible:  false,
			Violation: 1.25,
			Front:     1,
		},
	}
	require.NoError(t, w.WriteGeneration(3, scores, pop, []string{"f1", "f2"}))

	got := readCSV(t, filepath.Join(dir, "gen-0003-scores.csv"))
	require.Equal(t, []string{"member", "f1", "f2", "feasible", "violation", "front", "crowding"}, got[0])
	require.Equal(t, []string{"member-0", "1", "2", "true", "0", "0", "+Inf"}, got[1])
	require.Equal(t, []string{"member-1", "4", "0.5", "false", "1.25", "1", "0"}, got[2])

	gotPop := readCSV(t, filepath.Join(dir, "gen-0003-population.csv"))
	require.Equal(t, []string{"member", "x1", "x2"}, gotPop[0])
	require.Equal(t, []string{"member-0", "1.5", "-2"}, gotPop[1])
	require.Equal(t, []string{"member-1", "0.25", "3"}, gotPop[2])
}

func TestWriteGenerationOverwrites(t *testing.T) {
	w, err := NewWriter(t.TempDir(), nil)
	require.NoError(t, err)

	pop, err := ensemble.NewTable([]string{"x"})
	require.NoError(t, err)
	require.NoError(t, pop.Append("m", map[string]float64{"x": 1}))

	scores := []evolve.MemberScore{{Member: "m", Values: map[string]float64{"f": 1}}}
	require.NoError(t, w.WriteGeneration(0, scores, pop, []string{"f"}))
	require.NoError(t, w.WriteGeneration(0, scores, pop, []string{"f"}))

	got := readCSV(t, filepath.Join(w.Dir(), "gen-0000-scores.csv"))
	require.Len(t, got, 2)
}
