// Package filter evaluates composable, independently-specified criteria
// against a unified record set and returns the conjunction of all of them.
package filter

import (
	"strings"
	"time"

	"crime_pipeline/incident"
)

// SeverityCriterion is one of two variants: a closed numeric range, or a
// single-value toggle used when the working set only contains one severity
// level. Both answer the same question.
type SeverityCriterion interface {
	Matches(severity int) bool
}

// SeverityRange matches severities inside [Min, Max], inclusive on both
// ends. A contradictory range (Min > Max) is applied literally and matches
// nothing.
type SeverityRange struct {
	Min, Max int
}

func (c SeverityRange) Matches(severity int) bool {
	return severity >= c.Min && severity <= c.Max
}

// SeverityToggle is the degenerate-cardinality variant: when IncludeOthers
// is set the toggle imposes no constraint, otherwise only records with
// exactly Value pass.
type SeverityToggle struct {
	Value         int
	IncludeOthers bool
}

func (c SeverityToggle) Matches(severity int) bool {
	if c.IncludeOthers {
		return true
	}
	return severity == c.Value
}

// Criteria is a set of optional predicates. A zero-value field (nil pointer,
// empty slice) imposes no constraint. Enumerated-value criteria are
// set-membership; empty selection passes everything.
type Criteria struct {
	Start       *time.Time
	End         *time.Time
	Categories  []string
	Districts   []string
	Resolutions []string
	DaysOfWeek  []string
	Hours       []int
	TimesOfDay  []string
	Severity    SeverityCriterion
}

// dateBased reports whether any criterion requires a valid timestamp.
// Records without one cannot satisfy a date constraint and are excluded
// while such a criterion is active.
func (c Criteria) dateBased() bool {
	return c.Start != nil || c.End != nil ||
		len(c.DaysOfWeek) > 0 || len(c.Hours) > 0 || len(c.TimesOfDay) > 0
}

// Result carries the filtered subset plus before/after counts for
// caller-side reporting. The counts are an observation, not a mutation.
type Result struct {
	Records     []incident.Record `json:"records"`
	TotalBefore int               `json:"total_before"`
	TotalAfter  int               `json:"total_after"`
}

// Apply returns the subset of records satisfying every specified criterion.
// Criteria are commutative: application order never changes the result.
func Apply(records []incident.Record, c Criteria) Result {
	categories := toSet(c.Categories)
	districts := toSet(c.Districts)
	resolutions := toSet(c.Resolutions)
	days := toSet(c.DaysOfWeek)
	buckets := toSet(c.TimesOfDay)
	hours := make(map[int]struct{}, len(c.Hours))
	for _, h := range c.Hours {
		hours[h] = struct{}{}
	}
	dateBased := c.dateBased()

	out := make([]incident.Record, 0, len(records))
	for _, r := range records {
		if dateBased && r.Dates == nil {
			continue
		}
		if !dateInRange(r.Dates, c.Start, c.End) {
			continue
		}
		if !inSet(categories, r.Category) {
			continue
		}
		if !inSet(districts, r.PdDistrict) {
			continue
		}
		if !inSet(resolutions, r.Resolution) {
			continue
		}
		if len(days) > 0 {
			day, ok := r.Weekday()
			if !ok {
				continue
			}
			if _, match := days[day]; !match {
				continue
			}
		}
		if len(hours) > 0 {
			h, ok := r.Hour()
			if !ok {
				continue
			}
			if _, match := hours[h]; !match {
				continue
			}
		}
		if len(buckets) > 0 {
			bucket, ok := r.TimeOfDay()
			if !ok {
				continue
			}
			if _, match := buckets[bucket]; !match {
				continue
			}
		}
		if c.Severity != nil && !c.Severity.Matches(r.Severity) {
			continue
		}
		out = append(out, r)
	}
	return Result{Records: out, TotalBefore: len(records), TotalAfter: len(out)}
}

// dateInRange compares on the date portion only; both ends inclusive.
func dateInRange(ts, start, end *time.Time) bool {
	if start == nil && end == nil {
		return true
	}
	if ts == nil {
		return false
	}
	day := dateOnly(*ts)
	if start != nil && day.Before(dateOnly(*start)) {
		return false
	}
	if end != nil && day.After(dateOnly(*end)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToUpper(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, value *string) bool {
	if len(set) == 0 {
		return true
	}
	if value == nil {
		return false
	}
	_, ok := set[*value]
	return ok
}
