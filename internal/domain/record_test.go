package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLine constructs a fixed-width CIFP line from the same layout table the
// parser reads, so fixtures never drift from the registry.
func buildLine(t *testing.T, code string, fields map[string]string) string {
	t.Helper()

	defs, ok := Layout(code)
	require.True(t, ok, "layout %q not registered", code)

	var b strings.Builder
	for _, def := range defs {
		v := fields[def.Name]
		require.LessOrEqual(t, len(v), def.Width, "field %q value %q too wide", def.Name, v)
		b.WriteString(v)
		b.WriteString(strings.Repeat(" ", def.Width-len(v)))
	}

	line := b.String()
	require.Len(t, line, RecordLength)
	return line
}

func airportLine(t *testing.T, fields map[string]string) string {
	t.Helper()
	base := map[string]string{
		"Record Type":          "S",
		"Customer / Area Code": "USA",
		"Section Code":         "P",
		"Subsection Code":      "A",
	}
	for k, v := range fields {
		base[k] = v
	}
	return buildLine(t, "PA", base)
}

func approachLine(t *testing.T, fields map[string]string) string {
	t.Helper()
	base := map[string]string{
		"Record Type":          "S",
		"Customer / Area Code": "USA",
		"Section Code":         "P",
		"Subsection Code":      "F",
	}
	for k, v := range fields {
		base[k] = v
	}
	return buildLine(t, "PF", base)
}

func TestLayoutWidths(t *testing.T) {
	for _, code := range []string{"PA", "PF"} {
		t.Run(code, func(t *testing.T) {
			defs, ok := Layout(code)
			require.True(t, ok)

			total := 0
			for _, def := range defs {
				assert.Positive(t, def.Width)
				total += def.Width
			}
			assert.Equal(t, RecordLength, total)
		})
	}
}

func TestParseLine_AirportRecord(t *testing.T) {
	line := airportLine(t, map[string]string{
		"Airport Identifier":              "KDEN",
		"ICAO Code":                       "K2",
		"Airport Reference Pt. Latitude":  "N39513881",
		"Airport Reference Pt. Longitude": "W104401939",
		"Airport Elevation":               "05434",
		"Airport Name":                    "DENVER INTL",
	})

	rec, err := ParseLine(line)
	require.NoError(t, err)

	assert.Equal(t, "PA", rec.Layout)
	assert.Equal(t, "KDEN", rec.Field("Airport Identifier"))
	assert.Equal(t, "K2", rec.Field("ICAO Code"))
	assert.Equal(t, "N39513881", rec.Field("Airport Reference Pt. Latitude"))
	assert.Equal(t, "05434", rec.Field("Airport Elevation"))
	assert.Equal(t, "DENVER INTL", rec.Field("Airport Name"), "field values are trimmed")
}

func TestParseLine_ApproachRecord(t *testing.T) {
	line := approachLine(t, map[string]string{
		"Airport Identifier":           "KDEN",
		"SID/STAR/Approach Identifier": "I16L",
		"Fix Identifier":               "CONNR",
		"Waypoint Description Code":    "E  F",
		"Altitude":                     "07000",
	})

	rec, err := ParseLine(line)
	require.NoError(t, err)

	assert.Equal(t, "PF", rec.Layout)
	assert.Equal(t, "I16L", rec.Field("SID/STAR/Approach Identifier"))
	assert.Equal(t, "E  F", rec.Field("Waypoint Description Code"),
		"interior spaces of the waypoint description code survive trimming")
	assert.Equal(t, "07000", rec.Field("Altitude"))
}

func TestParseLine_TrailingNewline(t *testing.T) {
	line := airportLine(t, map[string]string{"Airport Identifier": "KBOS"})

	rec, err := ParseLine(line + "\r\n")
	require.NoError(t, err)
	assert.Equal(t, "KBOS", rec.Field("Airport Identifier"))
}

func TestParseLine_Malformed(t *testing.T) {
	t.Run("short line", func(t *testing.T) {
		_, err := ParseLine("SUSAP KDEN")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record length")
	})

	t.Run("long line", func(t *testing.T) {
		_, err := ParseLine(strings.Repeat("X", RecordLength+1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record length")
	})

	t.Run("unmodeled section", func(t *testing.T) {
		// Navaid record: section D, subsection in column 6.
		line := "SUSAD " + strings.Repeat(" ", RecordLength-6)
		_, err := ParseLine(line)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no layout for section code "D "`)
	})

	t.Run("unmodeled airport subsection", func(t *testing.T) {
		// Runway record: section P, subsection G in column 13.
		line := "SUSAP KDENK2G" + strings.Repeat(" ", RecordLength-13)
		_, err := ParseLine(line)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no layout for section code "PG"`)
	})
}

func TestDMSToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		dms      string
		expected float64
	}{
		{"north dotted seconds", "N375213.40", 37 + 52.0/60 + 13.40/3600},
		{"west dotted seconds", "W1224413.00", -(122 + 44.0/60 + 13.00/3600)},
		{"packed latitude", "N39513881", 39 + 51.0/60 + 38.81/3600},
		{"packed longitude", "W104401939", -(104 + 40.0/60 + 19.39/3600)},
		{"south hemisphere", "S39513881", -(39 + 51.0/60 + 38.81/3600)},
		{"east hemisphere", "E104401939", 104 + 40.0/60 + 19.39/3600},
		{"equator", "N00000000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DMSToDecimal(tt.dms)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestDMSToDecimal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		dms  string
	}{
		{"empty", ""},
		{"no hemisphere", "39513881"},
		{"bad hemisphere", "X39513881"},
		{"non-numeric", "N39X13881"},
		{"too many digits", "W1044019399"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DMSToDecimal(tt.dms)
			assert.Error(t, err)
		})
	}
}

func TestParseFloatOrZero(t *testing.T) {
	assert.Equal(t, 0.0, parseFloatOrZero(""))
	assert.Equal(t, 0.0, parseFloatOrZero("   "))
	assert.Equal(t, 0.0, parseFloatOrZero("N/A"))
	assert.Equal(t, 5434.0, parseFloatOrZero("05434"))
	assert.Equal(t, 3.5, parseFloatOrZero(" 3.5 "))
}
