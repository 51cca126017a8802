package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownLayout reports a line whose section code has no registered
// layout. CIFP files carry many section types beyond the modeled ones, so
// callers treat this as expected noise rather than corruption.
var ErrUnknownLayout = errors.New("no layout for section code")

// RecordLength is the fixed width of a CIFP line, excluding the line ending.
const RecordLength = 132

// FieldDef is one column span in a record layout. A def with an empty name
// is reserved filler and is not captured into the parsed record.
type FieldDef struct {
	Name  string
	Width int
}

// ProcedureRecord is one parsed CIFP line: the layout code that selected the
// field table plus the whitespace-trimmed field values. Records are built
// once by ParseLine and read-only afterward.
type ProcedureRecord struct {
	Layout string // section+subsection code, e.g. "PA", "PF"
	Fields map[string]string
}

// Field returns the trimmed value of a named field, or "" if the layout does
// not carry it.
func (r ProcedureRecord) Field(name string) string {
	return r.Fields[name]
}

// recordLayouts maps a section+subsection code to its ordered column spans.
// Widths per layout sum to RecordLength. The registry is process-wide
// read-only state; the CIFP field catalog is versioned externally by the
// publication cycle, so changes land here, never in the parse loop.
var recordLayouts = map[string][]FieldDef{
	// Airport primary record.
	"PA": {
		{"Record Type", 1},
		{"Customer / Area Code", 3},
		{"Section Code", 1},
		{"", 1},
		{"Airport Identifier", 4},
		{"ICAO Code", 2},
		{"Subsection Code", 1},
		{"ATA/IATA Designator", 3},
		{"", 5},
		{"Continuation Record Number", 1},
		{"Speed Limit Altitude", 5},
		{"Longest Runway", 3},
		{"IFR Capability", 1},
		{"Longest Runway Surface Code", 1},
		{"Airport Reference Pt. Latitude", 9},
		{"Airport Reference Pt. Longitude", 10},
		{"Magnetic Variation", 5},
		{"Airport Elevation", 5},
		{"Speed Limit", 3},
		{"Recommended Navaid", 4},
		{"Recommended Navaid ICAO Code", 2},
		{"Transition Altitude", 5},
		{"Transition Level", 5},
		{"Public Military Indicator", 1},
		{"Time Zone", 1},
		{"Daylight Indicator", 1},
		{"Magnetic/True Indicator", 1},
		{"Datum Code", 3},
		{"", 6},
		{"Airport Name", 30},
		{"File Record Number", 5},
		{"Cycle Date", 4},
	},
	// Airport approach procedure leg record.
	"PF": {
		{"Record Type", 1},
		{"Customer / Area Code", 3},
		{"Section Code", 1},
		{"", 1},
		{"Airport Identifier", 4},
		{"ICAO Code", 2},
		{"Subsection Code", 1},
		{"SID/STAR/Approach Identifier", 6},
		{"Route Type", 1},
		{"Transition Identifier", 5},
		{"", 1},
		{"Sequence Number", 3},
		{"Fix Identifier", 5},
		{"Fix ICAO Code", 2},
		{"Fix Section Code", 1},
		{"Fix Subsection Code", 1},
		{"Continuation Record Number", 1},
		{"Waypoint Description Code", 4},
		{"Turn Direction", 1},
		{"RNP", 3},
		{"Path and Termination", 2},
		{"Turn Direction Valid", 1},
		{"Recommended Navaid", 4},
		{"Recommended Navaid ICAO Code", 2},
		{"Arc Radius", 6},
		{"Theta", 4},
		{"Rho", 4},
		{"Magnetic Course", 4},
		{"Route/Holding Distance or Time", 4},
		{"Recommended Navaid Section", 2},
		{"", 2},
		{"Altitude Description", 1},
		{"ATC Indicator", 1},
		{"Altitude", 5},
		{"Altitude 2", 5},
		{"Transition Altitude", 5},
		{"Speed Limit", 3},
		{"Vertical Angle", 4},
		{"Center Fix", 5},
		{"Multiple Code", 1},
		{"Center Fix ICAO Code", 2},
		{"Center Fix Section Code", 1},
		{"Center Fix Subsection Code", 1},
		{"GNSS/FMS Indication", 1},
		{"", 6},
		{"File Record Number", 5},
		{"Cycle Date", 4},
	},
}

// Layout returns the ordered field table for a section+subsection code.
// Exposed so fixture builders can construct valid lines from the same table
// the parser reads.
func Layout(code string) ([]FieldDef, bool) {
	defs, ok := recordLayouts[code]
	return defs, ok
}

// layoutCode extracts the section+subsection discriminator from a raw line.
// Airport ("P") records carry the subsection in column 13; all other sections
// carry it in column 6.
func layoutCode(line string) string {
	section := line[4]
	if section == 'P' {
		return string(section) + string(line[12])
	}
	return string(section) + string(line[5])
}

// ParseLine splits one CIFP line into a ProcedureRecord using the layout
// registry. Lines of the wrong length or with a section code the registry
// does not model return an error; the caller decides whether that is an
// anomaly worth a warning (bad length) or expected noise (unmodeled section).
func ParseLine(line string) (ProcedureRecord, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) != RecordLength {
		return ProcedureRecord{}, fmt.Errorf("record length %d, want %d", len(line), RecordLength)
	}

	code := layoutCode(line)
	defs, ok := recordLayouts[code]
	if !ok {
		return ProcedureRecord{}, fmt.Errorf("%w %q", ErrUnknownLayout, code)
	}

	fields := make(map[string]string, len(defs))
	offset := 0
	for _, def := range defs {
		value := line[offset : offset+def.Width]
		offset += def.Width
		if def.Name == "" {
			continue
		}
		fields[def.Name] = strings.TrimSpace(value)
	}

	return ProcedureRecord{Layout: code, Fields: fields}, nil
}

// DMSToDecimal converts a hemisphere-prefixed DMS coordinate to decimal
// degrees. Accepts the packed CIFP encoding ("N39513881", hundredths of
// seconds in the last two digits) and the dotted-seconds variant
// ("N375213.40"). N and E are positive, S and W negative.
func DMSToDecimal(dms string) (float64, error) {
	if dms == "" {
		return 0, fmt.Errorf("empty coordinate")
	}

	sign := 0.0
	switch dms[0] {
	case 'N', 'E':
		sign = 1
	case 'S', 'W':
		sign = -1
	default:
		return 0, fmt.Errorf("coordinate %q: no hemisphere prefix", dms)
	}

	digits := strings.ReplaceAll(dms[1:], ".", "")
	if len(digits) > 9 {
		return 0, fmt.Errorf("coordinate %q: too many digits", dms)
	}
	digits = strings.Repeat("0", 9-len(digits)) + digits

	deg, errD := strconv.Atoi(digits[0:3])
	min, errM := strconv.Atoi(digits[3:5])
	sec, errS := strconv.Atoi(digits[5:9])
	if errD != nil || errM != nil || errS != nil {
		return 0, fmt.Errorf("coordinate %q: non-numeric digits", dms)
	}

	return sign * (float64(deg) + float64(min)/60 + float64(sec)/100/3600), nil
}

// parseFloatOrZero parses a trimmed numeric field, returning 0 for blank or
// unparsable values. CIFP leaves unused numeric columns blank.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
