package domain

import "strings"

// Candidate chart titles are generated from static per-type template tables,
// not conditionals, so adding a type or a publisher variant never touches
// the decode algorithm. Runway templates carry two slots:
//
//	{s} — the disambiguating suffix, rendered as " X" when present, "" when not
//	{r} — the runway designator, dash stripped
//
// Template order is the match priority: compound, more specific titles come
// before their plain fallbacks, and the matcher takes the first catalog hit.

// runwayFamily is the template set for one runway-suffixed type letter.
// parallel templates are additionally expanded with the trailing L/R of the
// runway replaced by "L/R", the convention for charts shared by parallel
// runways ("VOR RWY 16L/R").
type runwayFamily struct {
	templates []string
	parallel  []string
}

var ilsFamily = runwayFamily{
	templates: []string{
		"ILS{s} RWY {r}",
		"ILS OR LOC{s} RWY {r}",
		"ILS{s} OR LOC RWY {r}",
		"ILS OR LOC/DME{s} RWY {r}",
		"ILS OR LOC/NDB{s} RWY {r}",
		"ILS{s} OR LOC{s} RWY {r}",
		"ILS{s} OR LOC/DME{s} RWY {r}",
		"LOC{s} RWY {r}",
		"LOC/DME{s} RWY {r}",
	},
}

var vorFamily = runwayFamily{
	templates: []string{
		"VOR{s} RWY {r}",
		"VOR/DME{s} RWY {r}",
		"VOR{s} OR TACAN{s} RWY {r}",
		"VOR/DME{s} OR TACAN{s} RWY {r}",
		"VOR/DME OR TACAN{s} RWY {r}",
		"VOR/DME{s} OR TACAN RWY {r}",
		"VOR OR GPS{s} RWY {r}",
		"VOR/DME OR GPS{s} RWY {r}",
	},
	parallel: []string{
		"VOR{s} RWY {r}",
		"VOR/DME{s} RWY {r}",
	},
}

var ndbFamily = runwayFamily{
	templates: []string{
		"NDB{s} RWY {r}",
		"NDB/DME{s} RWY {r}",
	},
}

// runwayFamilies keys the first identifier character of runway-suffixed
// approach codes.
var runwayFamilies = map[byte]runwayFamily{
	'I': ilsFamily,
	'L': ilsFamily,
	'B': {templates: []string{"LOC BC{s} RWY {r}", "LOC/DME BC{s} RWY {r}"}},
	'R': {templates: []string{"RNAV (GPS){s} RWY {r}"}},
	'H': {templates: []string{"RNAV (RNP){s} RWY {r}"}},
	'P': {templates: []string{"GPS{s} RWY {r}"}},
	'S': vorFamily,
	'D': vorFamily,
	'V': vorFamily,
	'X': {templates: []string{"LDA{s} RWY {r}"}},
	'Q': ndbFamily,
	'N': ndbFamily,
}

// procedureFamilies keys the three-letter type code of circling / no-runway
// approach identifiers. The trailing suffix is appended verbatim, so
// "RNV-A" expands through "RNAV (GPS)" to "RNAV (GPS)-A".
var procedureFamilies = map[string][]string{
	"RNV": {"RNAV (GPS)"},
	"GPS": {"GPS"},
	"VDM": {"VOR/DME", "VOR/DME OR GPS"},
	"VOR": {"VOR", "VOR OR TACAN", "VOR OR TACAN OR GPS"},
	"LBC": {"LOC BC", "LOC/DME BC"},
	"LDA": {"LDA", "LDA/DME"},
	"NDB": {"NDB"},
	"LOC": {"LOC", "LOC/DME"},
}

// DecodeApproachIdentifier expands a coded approach identifier into the
// ordered list of chart titles publishers may have used for it. Pure and
// deterministic. Identifiers whose type has no table entry yield nil; the
// caller reports them rather than guessing.
func DecodeApproachIdentifier(id string) []string {
	if len(id) < 2 {
		return nil
	}
	if id[1] >= '0' && id[1] <= '9' {
		return decodeRunwayForm(id)
	}
	return decodeProcedureForm(id)
}

// decodeRunwayForm handles type(1) runway(up to 3) suffix(1, optional),
// e.g. "I09L", "R09-Z" -> candidates over "RWY 09L" / "Z RWY 09".
func decodeRunwayForm(id string) []string {
	family, ok := runwayFamilies[id[0]]
	if !ok {
		return nil
	}

	end := min(len(id), 4)
	runway := strings.ReplaceAll(id[1:end], "-", "")
	suffix := ""
	if len(id) > 4 {
		suffix = string(id[4])
	}

	names := make([]string, 0, len(family.templates)+len(family.parallel))
	for _, t := range family.templates {
		names = append(names, expandRunwayTemplate(t, suffix, runway))
	}

	if n := len(runway); n > 0 && (runway[n-1] == 'L' || runway[n-1] == 'R') {
		shared := runway[:n-1] + "L/R"
		for _, t := range family.parallel {
			names = append(names, expandRunwayTemplate(t, suffix, shared))
		}
	}

	return names
}

// decodeProcedureForm handles type(3) suffix(trailing), e.g. "RNV-A".
func decodeProcedureForm(id string) []string {
	if len(id) < 3 {
		return nil
	}
	families, ok := procedureFamilies[id[:3]]
	if !ok {
		return nil
	}

	suffix := id[3:]
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f + suffix
	}
	return names
}

func expandRunwayTemplate(tmpl, suffix, runway string) string {
	token := ""
	if suffix != "" {
		token = " " + suffix
	}
	out := strings.ReplaceAll(tmpl, "{s}", token)
	return strings.ReplaceAll(out, "{r}", runway)
}
