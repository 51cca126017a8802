// Command validate runs offline integrity checks against a local CIFP
// procedure database and d-TPP metafile snapshot: parseability, extraction
// counts, catalog consistency, and approach-to-chart match coverage. It is
// the pre-flight check run against a new publication cycle before the
// service is pointed at it.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -cifp data/FAACIFP18 \
//	  -metafile data/d-tpp_Metafile.xml \
//	  -cycle 2301
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/approach-chart-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	cifpPath := flag.String("cifp", "", "path to the FAACIFP18 procedure database")
	metafilePath := flag.String("metafile", "", "path to the d-TPP metafile XML")
	cycle := flag.String("cycle", "", "d-TPP publication cycle, e.g. 2301")
	flag.Parse()

	if *cifpPath == "" || *metafilePath == "" || *cycle == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*cifpPath, *metafilePath, *cycle); code != 0 {
		os.Exit(code)
	}
}

// parseCounts aggregates one scan over the procedure database.
type parseCounts struct {
	lines     int
	parsed    int
	unmodeled int
	malformed int
	dropped   int
}

func run(cifpPath, metafilePath, cycle string) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fmt.Println("=== Approach Chart Data Validation ===")
	fmt.Println()

	// ── Load both sources ──
	extractor := domain.NewExtractor(logger)
	counts, parsePhase, err := scanProcedures(cifpPath, extractor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read procedure database: %v\n", err)
		return 1
	}

	f, err := os.Open(metafilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open metafile: %v\n", err)
		return 1
	}
	entries, err := domain.ParseChartMetafile(f, cycle)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	airports := extractor.Airports()
	fixes := extractor.Fixes()
	idx := domain.BuildChartIndex(entries)
	resolved, stats := domain.MatchApproaches(fixes, idx, logger)

	// ── Run validation phases ──
	phases := []*phase{
		parsePhase,
		validateExtraction(airports, fixes, extractor.DuplicateAirports()),
		validateCatalog(entries, idx, cycle),
		validateCoverage(resolved, stats, airports),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Lines: %d total, %d parsed, %d unmodeled, %d malformed, %d dropped\n",
		counts.lines, counts.parsed, counts.unmodeled, counts.malformed, counts.dropped)
	fmt.Printf("Rows: %d airports (%d duplicates), %d approach fixes, %d chart entries\n",
		len(airports), extractor.DuplicateAirports(), len(fixes), len(entries))
	fmt.Printf("Coverage: %d resolved, %d unresolved, %d unknown identifiers (%.1f%%)\n",
		stats.Resolved, stats.Unresolved, stats.UnknownIdentifiers, coverage(stats))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Procedure Database Parse ──
// Scans every line through the layout registry and feeds the extractor.

func scanProcedures(path string, extractor *domain.Extractor) (parseCounts, *phase, error) {
	p := &phase{name: "Phase 1: Procedure Database Parse"}
	var counts parseCounts

	f, err := os.Open(path)
	if err != nil {
		return counts, nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		counts.lines++
		line := scanner.Text()
		if line == "" {
			continue
		}

		rec, err := domain.ParseLine(line)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownLayout) {
				counts.unmodeled++
				continue
			}
			counts.malformed++
			if counts.malformed <= 10 {
				p.errorf("line %d: %v", counts.lines, err)
			}
			continue
		}
		counts.parsed++

		if err := extractor.Add(rec); err != nil {
			counts.dropped++
			p.errorf("line %d: %v", counts.lines, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return counts, nil, err
	}

	if counts.parsed == 0 {
		p.errorf("no modeled records parsed from %d lines", counts.lines)
	}
	if counts.malformed > 10 {
		p.errorf("... and %d more malformed lines", counts.malformed-10)
	}
	return counts, p, nil
}

// ── Phase 2: Extraction ──
// Sanity checks on the extracted airport and FAF tables.

func validateExtraction(airports []domain.Airport, fixes []domain.ApproachFix, duplicates int) *phase {
	p := &phase{name: "Phase 2: Extraction (airports, FAF legs)"}

	if len(airports) == 0 {
		p.errorf("no airports extracted")
	}
	if len(fixes) == 0 {
		p.errorf("no final approach fixes extracted")
	}

	seen := make(map[string]bool, len(airports))
	for _, a := range airports {
		if a.Identifier == "" {
			p.errorf("airport with empty identifier")
			continue
		}
		if seen[a.Identifier] {
			p.errorf("airport %s appears twice in the aggregated table", a.Identifier)
		}
		seen[a.Identifier] = true

		if a.Latitude < -90 || a.Latitude > 90 {
			p.errorf("airport %s: latitude %g out of range", a.Identifier, a.Latitude)
		}
		if a.Longitude < -180 || a.Longitude > 180 {
			p.errorf("airport %s: longitude %g out of range", a.Identifier, a.Longitude)
		}
	}

	for i, fix := range fixes {
		if fix.AirportIdentifier == "" {
			p.errorf("fix %d: empty airport identifier", i)
		}
		if fix.ApproachIdentifier == "" {
			p.errorf("fix %d (%s): empty approach identifier", i, fix.AirportIdentifier)
		}
	}

	return p
}

// ── Phase 3: Chart Catalog ──
// Checks catalog entries and the built index against the cycle.

func validateCatalog(entries []domain.ChartEntry, idx *domain.ChartIndex, cycle string) *phase {
	p := &phase{name: "Phase 3: Chart Catalog (d-TPP metafile)"}

	if len(entries) == 0 {
		p.errorf("no catalog entries parsed")
	}

	prefix := cycle + "/"
	for i, e := range entries {
		if e.AirportIdentifier == "" {
			p.errorf("entry %d (%q): empty airport identifier", i, e.Title)
		}
		if e.Title == "" {
			p.errorf("entry %d (%s): empty title", i, e.AirportIdentifier)
		}
		if !strings.HasPrefix(e.Filename, prefix) {
			p.errorf("entry %d (%s %q): filename %q not under cycle %s", i, e.AirportIdentifier, e.Title, e.Filename, cycle)
		}
		if e.Title != domain.NormalizeChartTitle(e.Title) {
			p.errorf("entry %d (%s): title %q not normalized", i, e.AirportIdentifier, e.Title)
		}
	}

	if idx.Len() > len(entries) {
		p.errorf("index has %d keys for %d entries", idx.Len(), len(entries))
	}

	return p
}

// ── Phase 4: Match Coverage ──
// Verifies the matcher's accounting and the resolved rows' integrity.

func validateCoverage(resolved []domain.ResolvedApproach, stats domain.MatchStats, airports []domain.Airport) *phase {
	p := &phase{name: "Phase 4: Match Coverage"}

	if stats.Resolved+stats.Unresolved != stats.Total {
		p.errorf("coverage accounting: %d resolved + %d unresolved != %d total",
			stats.Resolved, stats.Unresolved, stats.Total)
	}
	if len(resolved) != stats.Total {
		p.errorf("row count %d != stats total %d", len(resolved), stats.Total)
	}

	airportSet := make(map[string]bool, len(airports))
	for _, a := range airports {
		airportSet[a.Identifier] = true
	}

	for i, r := range resolved {
		if r.Resolved {
			if r.ChartTitle == "" || r.ChartFilename == "" {
				p.errorf("row %d (%s %s): resolved without chart fields", i, r.AirportIdentifier, r.ApproachIdentifier)
			}
		} else if r.ChartTitle != "" || r.ChartFilename != "" {
			p.errorf("row %d (%s %s): unresolved but carries chart fields", i, r.AirportIdentifier, r.ApproachIdentifier)
		}
		if !airportSet[r.AirportIdentifier] {
			p.errorf("row %d: airport %s not in the airport table", i, r.AirportIdentifier)
		}
	}

	return p
}

func coverage(stats domain.MatchStats) float64 {
	if stats.Total == 0 {
		return 0
	}
	return 100 * float64(stats.Resolved) / float64(stats.Total)
}
