// Package extract turns raw incident-report text into a labeled field map
// using a fixed pattern set. Extraction degrades, it never fails: a field
// whose pattern finds no match is null, and text with nothing recoverable
// yields an all-null map.
package extract

import (
	"regexp"
	"strings"
	"time"
)

// patterns maps each logical field to the expression that pulls its raw
// value out of report text. Every pattern captures exactly one group. The
// description spans from its start marker to the district stop marker, so
// it is the only field that may contain embedded newlines before trimming.
var patterns = map[string]*regexp.Regexp{
	"Report Number": regexp.MustCompile(`Report Number:\s*([^\n]+)`),
	"Date & Time":   regexp.MustCompile(`Date & Time:\s*([^\n]+)`),
	"Category":      regexp.MustCompile(`Category:\s*([^\n]+)`),
	"Descript":      regexp.MustCompile(`(?s)Detailed Description:\s*(.+?)\nPolice District:`),
	"PdDistrict":    regexp.MustCompile(`Police District:\s*([^\n]+)`),
	"Resolution":    regexp.MustCompile(`Resolution:\s*([^\n]+)`),
	"Address":       regexp.MustCompile(`Incident Location:\s*([^\n]+)`),
	"Coordinates":   regexp.MustCompile(`Coordinates:\s*\(([^)]+)\)`),
}

var internalWhitespace = regexp.MustCompile(`\s+`)

// reportDateLayout is the strict format for report timestamps once all
// internal whitespace is stripped. The report template controls this
// format, so no permissive fallback applies here.
const reportDateLayout = "2006-01-0215:04:05"

// Fields applies the pattern set to report text and returns the field-name
// to nullable-value mapping the normalizer consumes. Absent matches encode
// as nil, so a document with no recoverable text produces a degraded but
// valid all-null result.
func Fields(text string) map[string]*string {
	raw := make(map[string]*string, len(patterns))
	for name, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			val := strings.TrimSpace(m[1])
			raw[name] = &val
		} else {
			raw[name] = nil
		}
	}

	fields := map[string]*string{
		"Report Number": raw["Report Number"],
		"Dates":         raw["Date & Time"],
		"Category":      raw["Category"],
		"Descript":      raw["Descript"],
		"DayOfWeek":     deriveDayOfWeek(raw["Date & Time"]),
		"PdDistrict":    raw["PdDistrict"],
		"Resolution":    raw["Resolution"],
		"Address":       raw["Address"],
	}
	lat, lon := splitCoordinates(raw["Coordinates"])
	fields["Latitude"] = lat
	fields["Longitude"] = lon
	return fields
}

// deriveDayOfWeek parses the extracted date string under the strict report
// format and returns the uppercase weekday name, or nil on any parse
// failure. A malformed date never aborts extraction.
func deriveDayOfWeek(dateString *string) *string {
	if dateString == nil {
		return nil
	}
	cleaned := internalWhitespace.ReplaceAllString(*dateString, "")
	t, err := time.Parse(reportDateLayout, cleaned)
	if err != nil {
		return nil
	}
	day := strings.ToUpper(t.Weekday().String())
	return &day
}

// splitCoordinates parses a combined "<lat>, <lon>" value into its parts.
// Malformed input yields nil for both.
func splitCoordinates(coords *string) (lat, lon *string) {
	if coords == nil {
		return nil, nil
	}
	parts := strings.Split(*coords, ", ")
	if len(parts) != 2 {
		return nil, nil
	}
	la, lo := parts[0], parts[1]
	return &la, &lo
}
