// Package archive persists per-generation optimization history as CSV
// files, one file per generation plus the decision ensemble alongside,
// so a run can be inspected or post-processed without re-running the
// models.
package archive

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paretosim/optimization-core/internal/ensemble"
	"github.com/paretosim/optimization-core/internal/evolve"
)

// Writer writes generation snapshots under a run directory.
type Writer struct {
	dir string
	log *slog.Logger
}

// NewWriter creates the run directory and returns a writer rooted there.
func NewWriter(dir string, log *slog.Logger) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive: directory is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create run directory: %w", err)
	}
	return &Writer{dir: dir, log: log}, nil
}

// Dir returns the run directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteGeneration writes two files for one generation: the scored
// population (objective values, feasibility, front, crowding) and the
// decision-variable ensemble that produced it.
func (w *Writer) WriteGeneration(generation int, scores []evolve.MemberScore, population *ensemble.Table, quantities []string) error {
	if err := w.writeScores(generation, scores, quantities); err != nil {
		return err
	}
	if err := w.writePopulation(generation, population); err != nil {
		return err
	}
	w.log.Debug("generation archived", "generation", generation, "dir", w.dir)
	return nil
}

func (w *Writer) writeScores(generation int, scores []evolve.MemberScore, quantities []string) error {
	path := filepath.Join(w.dir, fmt.Sprintf("gen-%04d-scores.csv", generation))
	header := append([]string{"member"}, quantities...)
	header = append(header, "feasible", "violation", "front", "crowding")

	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		row := make([]string, 0, len(header))
		row = append(row, s.Member)
		for _, q := range quantities {
			row = append(row, formatFloat(s.Values[q]))
		}
		row = append(row,
			strconv.FormatBool(s.Feasible),
			formatFloat(s.Violation),
			strconv.Itoa(s.Front),
			formatFloat(s.Crowding))
		rows = append(rows, row)
	}
	return writeCSV(path, header, rows)
}

func (w *Writer) writePopulation(generation int, population *ensemble.Table) error {
	path := filepath.Join(w.dir, fmt.Sprintf("gen-%04d-population.csv", generation))
	vars := population.Variables()
	header := append([]string{"member"}, vars...)

	rows := make([][]string, 0, population.Len())
	for i := 0; i < population.Len(); i++ {
		r := population.RowAt(i)
		row := make([]string, 0, len(header))
		row = append(row, r.Name)
		for _, v := range vars {
			row = append(row, formatFloat(r.Values[v]))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, header, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", path, err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("archive: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("archive: close %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
