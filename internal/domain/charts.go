package domain

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ChartEntry is one catalog row: an airport, a normalized chart title, and
// the chart image filename relative to the publication root.
type ChartEntry struct {
	AirportIdentifier string `json:"airport_identifier"`
	Title             string `json:"title"`
	Filename          string `json:"filename"`
}

// d-TPP metafile document shape. Only the attributes and elements the
// catalog needs are mapped; the decoder skips the rest.
type dtppMetafile struct {
	XMLName xml.Name    `xml:"digital_tpp"`
	Cycle   string      `xml:"cycle,attr"`
	States  []dtppState `xml:"state_code"`
}

type dtppState struct {
	Cities []dtppCity `xml:"city_name"`
}

type dtppCity struct {
	Airports []dtppAirport `xml:"airport_name"`
}

type dtppAirport struct {
	ICAOIdent string       `xml:"icao_ident,attr"`
	AptIdent  string       `xml:"apt_ident,attr"`
	Records   []dtppRecord `xml:"record"`
}

type dtppRecord struct {
	ChartCode string `xml:"chart_code"`
	ChartName string `xml:"chart_name"`
	PDFName   string `xml:"pdf_name"`
}

// ParseChartMetafile decodes a d-TPP metafile into ChartEntry rows. Titles
// are normalized on the way in; filenames are prefixed with the given cycle
// so they resolve against the publication root. An undecodable document is
// fatal for the run — there is nothing to match against without a catalog.
func ParseChartMetafile(r io.Reader, cycle string) ([]ChartEntry, error) {
	var mf dtppMetafile
	if err := xml.NewDecoder(r).Decode(&mf); err != nil {
		return nil, fmt.Errorf("parse chart metafile: %w", err)
	}

	var entries []ChartEntry
	for _, state := range mf.States {
		for _, city := range state.Cities {
			for _, apt := range city.Airports {
				ident := apt.ICAOIdent
				if ident == "" {
					ident = apt.AptIdent
				}
				for _, rec := range apt.Records {
					entries = append(entries, ChartEntry{
						AirportIdentifier: ident,
						Title:             NormalizeChartTitle(rec.ChartName),
						Filename:          cycle + "/" + rec.PDFName,
					})
				}
			}
		}
	}

	return entries, nil
}

// NormalizeChartTitle strips trailing category and special-authorization
// qualifiers from a raw chart title: "ILS RWY 27 (CAT II)" -> "ILS RWY 27".
// The " (CAT" and " (SA" cut points are located independently on the
// original title and the earlier one wins; the truncations are deliberately
// not chained.
func NormalizeChartTitle(title string) string {
	cut := len(title)
	if i := strings.Index(title, " (CAT"); i != -1 && i < cut {
		cut = i
	}
	if i := strings.Index(title, " (SA"); i != -1 && i < cut {
		cut = i
	}
	return title[:cut]
}
