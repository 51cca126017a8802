package domain

import (
	"log/slog"
	"time"
)

// ResolvedApproach is the terminal output row: the FAF leg plus the matched
// chart, or an explicit unresolved marker. Every input ApproachFix produces
// exactly one ResolvedApproach.
type ResolvedApproach struct {
	ApproachFix

	Resolved      bool      `json:"resolved"`
	ChartTitle    string    `json:"chart_title,omitempty"`
	ChartFilename string    `json:"chart_filename,omitempty"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// MatchStats aggregates one matching run. Unresolved rows are a coverage
// signal, not an error; UnknownIdentifiers counts fixes whose identifier
// type has no decoder table entry.
type MatchStats struct {
	Total              int
	Resolved           int
	Unresolved         int
	UnknownIdentifiers int
}

type chartKey struct {
	airport string
	title   string
}

// ChartIndex is the read-only (airport, title) → ChartEntry lookup built
// once from the catalog before any matching begins. Lookups are exact:
// case-sensitive, whitespace-exact.
type ChartIndex struct {
	entries map[chartKey]ChartEntry
}

// BuildChartIndex indexes catalog entries in one pass. When the same
// (airport, title) appears twice the first catalog occurrence wins, keeping
// results independent of downstream iteration order.
func BuildChartIndex(entries []ChartEntry) *ChartIndex {
	idx := &ChartIndex{entries: make(map[chartKey]ChartEntry, len(entries))}
	for _, e := range entries {
		key := chartKey{airport: e.AirportIdentifier, title: e.Title}
		if _, seen := idx.entries[key]; !seen {
			idx.entries[key] = e
		}
	}
	return idx
}

// Len returns the number of distinct (airport, title) pairs indexed.
func (idx *ChartIndex) Len() int { return len(idx.entries) }

// Lookup returns the catalog entry for an exact airport and title.
func (idx *ChartIndex) Lookup(airport, title string) (ChartEntry, bool) {
	e, ok := idx.entries[chartKey{airport: airport, title: title}]
	return e, ok
}

// MatchApproaches links every FAF row to its chart: decode the identifier
// into ranked candidate titles, take the first title present in the catalog
// for that airport, and mark the row unresolved when none hits. Total and
// deterministic — len(out) == len(fixes) always, and a given catalog and fix
// list produce the same rows in the same order every run.
func MatchApproaches(fixes []ApproachFix, idx *ChartIndex, logger *slog.Logger) ([]ResolvedApproach, MatchStats) {
	now := clock.Now()
	out := make([]ResolvedApproach, 0, len(fixes))
	stats := MatchStats{Total: len(fixes)}

	for _, fix := range fixes {
		row := ResolvedApproach{ApproachFix: fix, ProcessedAt: now}

		candidates := DecodeApproachIdentifier(fix.ApproachIdentifier)
		if len(candidates) == 0 {
			stats.UnknownIdentifiers++
			logger.Warn("unknown approach identifier type",
				"airport", fix.AirportIdentifier,
				"identifier", fix.ApproachIdentifier,
			)
		}

		for _, title := range candidates {
			if entry, ok := idx.Lookup(fix.AirportIdentifier, title); ok {
				row.Resolved = true
				row.ChartTitle = entry.Title
				row.ChartFilename = entry.Filename
				break
			}
		}

		if row.Resolved {
			stats.Resolved++
		} else {
			stats.Unresolved++
			logger.Debug("no chart found for approach",
				"airport", fix.AirportIdentifier,
				"identifier", fix.ApproachIdentifier,
				"candidates", candidates,
			)
		}

		out = append(out, row)
	}

	return out, stats
}
