package domain

import (
	"fmt"
	"log/slog"
)

const (
	airportLayout  = "PA"
	approachLayout = "PF"

	// fafWaypointCode marks the final approach fix leg of an approach
	// procedure. Column four of the waypoint description code is 'F' for a
	// FAF; the full four-character value is matched exactly, as published.
	fafWaypointCode = "E  F"
)

// Airport is one aggregated airport-reference row with decoded coordinates.
type Airport struct {
	Identifier         string  `json:"identifier"`
	ICAOCode           string  `json:"icao_code,omitempty"`
	Name               string  `json:"name,omitempty"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Elevation          float64 `json:"elevation"`
	LongestRunway      float64 `json:"longest_runway"`
	TransitionAltitude float64 `json:"transition_altitude"`
	TransitionLevel    float64 `json:"transition_level"`
	MagneticVariation  string  `json:"magnetic_variation,omitempty"`
	CycleDate          string  `json:"cycle_date,omitempty"`
}

// ApproachFix is one final-approach-fix leg row. (Airport, Identifier) pairs
// repeat when a procedure has duplicate FAF legs; duplicates are kept so the
// output table stays row-for-row with the source.
type ApproachFix struct {
	AirportIdentifier          string  `json:"airport_identifier"`
	ApproachIdentifier         string  `json:"approach_identifier"`
	FixIdentifier              string  `json:"fix_identifier,omitempty"`
	RNP                        float64 `json:"rnp"`
	ArcRadius                  float64 `json:"arc_radius"`
	Theta                      float64 `json:"theta"`
	Rho                        float64 `json:"rho"`
	MagneticCourse             float64 `json:"magnetic_course"`
	RouteHoldingDistanceOrTime float64 `json:"route_holding_distance_or_time"`
	Altitude                   float64 `json:"altitude"`
	Altitude2                  float64 `json:"altitude_2"`
	SpeedLimit                 float64 `json:"speed_limit"`
	TransitionAltitude         float64 `json:"transition_altitude"`
	VerticalAngle              float64 `json:"vertical_angle"`
}

// IsAirportReference reports whether a record is an airport primary record.
func IsAirportReference(rec ProcedureRecord) bool {
	return rec.Layout == airportLayout
}

// IsFinalApproachFix reports whether a record is the FAF leg of an approach.
func IsFinalApproachFix(rec ProcedureRecord) bool {
	return rec.Layout == approachLayout && rec.Field("Waypoint Description Code") == fafWaypointCode
}

// Extractor accumulates airport and FAF rows from a single scan over parsed
// records. Airports collapse to one row per identifier (last write wins,
// duplicates counted); FAF rows keep source order and duplicates.
type Extractor struct {
	logger *slog.Logger

	airports     []Airport
	airportIndex map[string]int // identifier -> position in airports
	fixes        []ApproachFix

	duplicateAirports int
}

// NewExtractor creates an Extractor. Duplicate-airport anomalies are logged
// through the given logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{
		logger:       logger,
		airportIndex: make(map[string]int),
	}
}

// Add routes one parsed record into the airport or FAF accumulator. Records
// of other layouts are ignored. Returns an error only for airport records
// whose coordinates do not decode; the record is dropped and counted by the
// caller, processing continues.
func (e *Extractor) Add(rec ProcedureRecord) error {
	switch {
	case IsAirportReference(rec):
		apt, err := airportFromRecord(rec)
		if err != nil {
			return err
		}
		if i, seen := e.airportIndex[apt.Identifier]; seen {
			// Continuation data republished under the same identifier.
			// Keep the newest row but surface the anomaly.
			e.duplicateAirports++
			e.logger.Debug("duplicate airport record", "identifier", apt.Identifier)
			e.airports[i] = apt
			return nil
		}
		e.airportIndex[apt.Identifier] = len(e.airports)
		e.airports = append(e.airports, apt)
	case IsFinalApproachFix(rec):
		e.fixes = append(e.fixes, approachFixFromRecord(rec))
	}
	return nil
}

// Airports returns the aggregated airport rows in first-seen order.
func (e *Extractor) Airports() []Airport { return e.airports }

// Fixes returns the FAF rows in source order.
func (e *Extractor) Fixes() []ApproachFix { return e.fixes }

// DuplicateAirports returns how many airport records re-used an identifier.
func (e *Extractor) DuplicateAirports() int { return e.duplicateAirports }

func airportFromRecord(rec ProcedureRecord) (Airport, error) {
	lat, err := DMSToDecimal(rec.Field("Airport Reference Pt. Latitude"))
	if err != nil {
		return Airport{}, fmt.Errorf("airport %s: latitude: %w", rec.Field("Airport Identifier"), err)
	}
	lon, err := DMSToDecimal(rec.Field("Airport Reference Pt. Longitude"))
	if err != nil {
		return Airport{}, fmt.Errorf("airport %s: longitude: %w", rec.Field("Airport Identifier"), err)
	}

	return Airport{
		Identifier:         rec.Field("Airport Identifier"),
		ICAOCode:           rec.Field("ICAO Code"),
		Name:               rec.Field("Airport Name"),
		Latitude:           lat,
		Longitude:          lon,
		Elevation:          parseFloatOrZero(rec.Field("Airport Elevation")),
		LongestRunway:      parseFloatOrZero(rec.Field("Longest Runway")),
		TransitionAltitude: parseFloatOrZero(rec.Field("Transition Altitude")),
		TransitionLevel:    parseFloatOrZero(rec.Field("Transition Level")),
		MagneticVariation:  rec.Field("Magnetic Variation"),
		CycleDate:          rec.Field("Cycle Date"),
	}, nil
}

func approachFixFromRecord(rec ProcedureRecord) ApproachFix {
	return ApproachFix{
		AirportIdentifier:          rec.Field("Airport Identifier"),
		ApproachIdentifier:         rec.Field("SID/STAR/Approach Identifier"),
		FixIdentifier:              rec.Field("Fix Identifier"),
		RNP:                        parseFloatOrZero(rec.Field("RNP")),
		ArcRadius:                  parseFloatOrZero(rec.Field("Arc Radius")),
		Theta:                      parseFloatOrZero(rec.Field("Theta")),
		Rho:                        parseFloatOrZero(rec.Field("Rho")),
		MagneticCourse:             parseFloatOrZero(rec.Field("Magnetic Course")),
		RouteHoldingDistanceOrTime: parseFloatOrZero(rec.Field("Route/Holding Distance or Time")),
		Altitude:                   parseFloatOrZero(rec.Field("Altitude")),
		Altitude2:                  parseFloatOrZero(rec.Field("Altitude 2")),
		SpeedLimit:                 parseFloatOrZero(rec.Field("Speed Limit")),
		TransitionAltitude:         parseFloatOrZero(rec.Field("Transition Altitude")),
		VerticalAngle:              parseFloatOrZero(rec.Field("Vertical Angle")),
	}
}
