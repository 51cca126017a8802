// Package domain models FAA instrument procedure data and its link to
// published approach charts.
//
// # Data Sources
//
// Procedures come from the FAA Coded Instrument Flight Procedures (CIFP)
// file, an ARINC-424-style fixed-column text file republished every 28-day
// AIRAC cycle. Each 132-column line is one record; the section and subsection
// codes select the field layout. Only two layouts matter here:
//
//	PA — airport primary records (one per airport, with reference point
//	     coordinates and elevation)
//	PF — approach procedure leg records; a leg whose waypoint description
//	     code is "E  F" is the final approach fix (FAF) of its procedure
//
// Charts come from the FAA d-TPP metafile, an XML catalog published on the
// same cycle. It nests state -> city -> airport -> record, where each record
// carries a free-text chart title and the chart image filename. Airports are
// keyed by ICAO ident, falling back to the FAA apt ident when the ICAO ident
// is blank (small US fields have no ICAO code).
//
// # Coordinate Encoding
//
// CIFP coordinates are DMS with a leading hemisphere:
//
//	[N|S|E|W]DDDMMSSss  →  e.g. "N39513881", "W104450794"
//	sign = +1 for N/E, -1 for S/W; ss is hundredths of seconds.
//	Latitudes carry eight digits and are left-padded to nine before splitting.
//
// # Approach Identifier Encoding
//
// CIFP names an approach with a compact code; chart titles spell the same
// approach out in words, with publisher-dependent variants. Two shapes:
//
//	Runway-suffixed (second character is a digit):
//	  type(1) runway(2-3, optional dash) suffix(1, optional)
//	  "I09L"  → ILS family, runway 09L        → "ILS RWY 09L", ...
//	  "R09-Z" → RNAV (GPS) family, suffix Z   → "RNAV (GPS) Z RWY 09"
//	Circling / no-runway (second character is a letter):
//	  type(3) suffix(trailing, verbatim)
//	  "RNV-A" → "RNAV (GPS)-A"
//
// A single code can correspond to several published titles ("ILS RWY 23",
// "ILS OR LOC RWY 23", ...), so decoding yields an ordered candidate list,
// most specific first, and the matcher takes the first title present in the
// catalog. Codes with no entry in the type tables decode to nothing and the
// approach is reported unmatched rather than guessed.
package domain
