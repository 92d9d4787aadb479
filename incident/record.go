package incident

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical textual form for record timestamps.
const DateLayout = "2006-01-02 15:04:05"

// Columns is the canonical attribute set, in canonical order. Every record,
// regardless of origin, carries exactly these attributes and no others.
var Columns = []string{
	"Dates", "Category", "Severity", "Descript",
	"DayOfWeek", "PdDistrict", "Resolution",
	"Address", "Latitude", "Longitude",
}

// Record is one incident in the canonical schema. Textual attributes are
// uppercase once the record enters the unified store; nil means the source
// had no recoverable value. Coordinates stay textual until a map layer
// (outside this core) needs numbers.
type Record struct {
	Dates      *time.Time `json:"dates"`
	Category   *string    `json:"category"`
	Severity   int        `json:"severity"`
	Descript   *string    `json:"descript"`
	DayOfWeek  *string    `json:"day_of_week"`
	PdDistrict *string    `json:"pd_district"`
	Resolution *string    `json:"resolution"`
	Address    *string    `json:"address"`
	Latitude   *string    `json:"latitude"`
	Longitude  *string    `json:"longitude"`
}

// DedupeKey renders the full canonical attribute tuple as a single string.
// Two records are exact duplicates iff their keys are equal.
func (r Record) DedupeKey() string {
	vals := make([]string, 0, len(Columns))
	for _, col := range Columns {
		vals = append(vals, r.value(col))
	}
	return strings.Join(vals, "\x1f")
}

func (r Record) value(col string) string {
	switch col {
	case "Dates":
		if r.Dates == nil {
			return ""
		}
		return r.Dates.Format(DateLayout)
	case "Severity":
		return strconv.Itoa(r.Severity)
	default:
		return deref(r.field(col))
	}
}

func (r Record) field(col string) *string {
	switch col {
	case "Category":
		return r.Category
	case "Descript":
		return r.Descript
	case "DayOfWeek":
		return r.DayOfWeek
	case "PdDistrict":
		return r.PdDistrict
	case "Resolution":
		return r.Resolution
	case "Address":
		return r.Address
	case "Latitude":
		return r.Latitude
	case "Longitude":
		return r.Longitude
	default:
		return nil
	}
}

// Hour reports the record's hour of day (0-23). ok is false when the
// timestamp is absent.
func (r Record) Hour() (int, bool) {
	if r.Dates == nil {
		return 0, false
	}
	return r.Dates.Hour(), true
}

// Weekday reports the uppercase full weekday name derived from Dates.
// Recomputed on demand so it can never drift from the timestamp.
func (r Record) Weekday() (string, bool) {
	if r.Dates == nil {
		return "", false
	}
	return strings.ToUpper(r.Dates.Weekday().String()), true
}

// Time-of-day bucket labels. Intervals are half-open, left-inclusive.
const (
	BucketLateNight = "LATE NIGHT" // [0,6)
	BucketMorning   = "MORNING"    // [6,12)
	BucketAfternoon = "AFTERNOON"  // [12,18)
	BucketEvening   = "EVENING"    // [18,24)
)

// TimeOfDayForHour buckets an hour into one of the four fixed labels.
func TimeOfDayForHour(hour int) string {
	switch {
	case hour < 6:
		return BucketLateNight
	case hour < 12:
		return BucketMorning
	case hour < 18:
		return BucketAfternoon
	default:
		return BucketEvening
	}
}

// TimeOfDay reports the record's time-of-day bucket derived from Dates.
func (r Record) TimeOfDay() (string, bool) {
	h, ok := r.Hour()
	if !ok {
		return "", false
	}
	return TimeOfDayForHour(h), true
}

// lenientDateLayouts are tried in order when coercing dates from external
// sources. The extractor does not use these; it controls its own format.
var lenientDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseDateLenient coerces a date string from an external source. Unparseable
// or empty input yields nil, never an error.
func ParseDateLenient(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range lenientDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
