// Package export writes the run's output tables as CSV files for the
// downstream warehouse loader.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/approach-chart-etl/internal/domain"
)

const (
	airportsFile   = "airports.csv"
	approachesFile = "approaches.csv"
)

// CSVExporter writes airport and approach tables under a target directory.
// It implements pipeline.Loader. Files are replaced wholesale on each run.
type CSVExporter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVExporter creates an exporter rooted at dir, creating it if needed.
func NewCSVExporter(dir string, logger *slog.Logger) (*CSVExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &CSVExporter{dir: dir, logger: logger}, nil
}

// LoadAirports writes the airport directory to airports.csv.
func (e *CSVExporter) LoadAirports(ctx context.Context, airports []domain.Airport) error {
	rows := make([][]string, 0, len(airports)+1)
	rows = append(rows, []string{
		"identifier", "icao_code", "name", "latitude", "longitude",
		"elevation", "longest_runway", "transition_altitude",
		"transition_level", "magnetic_variation", "cycle_date",
	})
	for _, a := range airports {
		rows = append(rows, []string{
			a.Identifier,
			a.ICAOCode,
			a.Name,
			formatFloat(a.Latitude),
			formatFloat(a.Longitude),
			formatFloat(a.Elevation),
			formatFloat(a.LongestRunway),
			formatFloat(a.TransitionAltitude),
			formatFloat(a.TransitionLevel),
			a.MagneticVariation,
			a.CycleDate,
		})
	}
	return e.writeFile(ctx, airportsFile, rows)
}

// LoadApproaches writes the resolved approach set to approaches.csv.
// Unresolved rows are written too, with empty chart columns.
func (e *CSVExporter) LoadApproaches(ctx context.Context, approaches []domain.ResolvedApproach) error {
	rows := make([][]string, 0, len(approaches)+1)
	rows = append(rows, []string{
		"airport_identifier", "approach_identifier", "fix_identifier",
		"resolved", "chart_title", "chart_filename", "magnetic_course",
		"altitude", "vertical_angle", "processed_at",
	})
	for _, r := range approaches {
		rows = append(rows, []string{
			r.AirportIdentifier,
			r.ApproachIdentifier,
			r.FixIdentifier,
			strconv.FormatBool(r.Resolved),
			r.ChartTitle,
			r.ChartFilename,
			formatFloat(r.MagneticCourse),
			formatFloat(r.Altitude),
			formatFloat(r.VerticalAngle),
			r.ProcessedAt.Format(time.RFC3339),
		})
	}
	return e.writeFile(ctx, approachesFile, rows)
}

// writeFile writes rows to a temp file in the export directory and renames
// it into place so readers never see a partial table.
func (e *CSVExporter) writeFile(ctx context.Context, name string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(e.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	dst := filepath.Join(e.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}

	e.logger.Info("csv table written", "file", dst, "rows", len(rows)-1)
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
