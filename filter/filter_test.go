package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crime_pipeline/incident"
)

func sp(s string) *string { return &s }

func tp(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func testRecords() []incident.Record {
	return []incident.Record{
		{Dates: tp("2024-06-03 03:15:00"), Category: sp("ROBBERY"), Severity: 4, PdDistrict: sp("CENTRAL"), Resolution: sp("NONE")},
		{Dates: tp("2024-06-04 09:00:00"), Category: sp("FRAUD"), Severity: 3, PdDistrict: sp("SOUTHERN"), Resolution: sp("ARREST, BOOKED")},
		{Dates: tp("2024-06-05 17:45:00"), Category: sp("ARSON"), Severity: 5, PdDistrict: sp("CENTRAL"), Resolution: sp("NONE")},
		{Dates: tp("2024-06-10 21:30:00"), Category: sp("VANDALISM"), Severity: 2, PdDistrict: sp("MISSION"), Resolution: sp("NONE")},
		{Category: sp("WARRANTS"), Severity: 2, PdDistrict: sp("CENTRAL")}, // no timestamp
	}
}

func categories(result Result) []string {
	out := make([]string, 0, len(result.Records))
	for _, r := range result.Records {
		out = append(out, *r.Category)
	}
	return out
}

func TestApplyEmptyCriteriaPassesEverything(t *testing.T) {
	records := testRecords()
	result := Apply(records, Criteria{})
	assert.Equal(t, len(records), result.TotalBefore)
	assert.Equal(t, len(records), result.TotalAfter)
	assert.Equal(t, records, result.Records)
}

func TestApplyDateRangeInclusive(t *testing.T) {
	result := Apply(testRecords(), Criteria{
		Start: tp("2024-06-04 00:00:00"),
		End:   tp("2024-06-05 00:00:00"),
	})
	// Date-only comparison: the 17:45 record on the end day still passes.
	assert.Equal(t, []string{"FRAUD", "ARSON"}, categories(result))
}

func TestApplyDateCriterionExcludesUndatedRecords(t *testing.T) {
	result := Apply(testRecords(), Criteria{Start: tp("2000-01-01 00:00:00")})
	for _, r := range result.Records {
		assert.NotNil(t, r.Dates)
	}
	assert.Equal(t, 4, result.TotalAfter)
}

func TestApplyDaysOfWeekExcludesUndatedRecords(t *testing.T) {
	result := Apply(testRecords(), Criteria{DaysOfWeek: []string{"monday", "TUESDAY"}})
	assert.Equal(t, []string{"ROBBERY", "FRAUD", "VANDALISM"}, categories(result))
}

func TestApplyCategorySet(t *testing.T) {
	result := Apply(testRecords(), Criteria{Categories: []string{"robbery", " arson "}})
	assert.Equal(t, []string{"ROBBERY", "ARSON"}, categories(result))
}

func TestApplyDistrictAndResolutionConjunction(t *testing.T) {
	result := Apply(testRecords(), Criteria{
		Districts:   []string{"CENTRAL"},
		Resolutions: []string{"NONE"},
	})
	assert.Equal(t, []string{"ROBBERY", "ARSON", "WARRANTS"}, categories(result))
}

func TestApplyHours(t *testing.T) {
	result := Apply(testRecords(), Criteria{Hours: []int{3, 17}})
	assert.Equal(t, []string{"ROBBERY", "ARSON"}, categories(result))
}

func TestApplyTimeOfDayBuckets(t *testing.T) {
	result := Apply(testRecords(), Criteria{TimesOfDay: []string{incident.BucketLateNight}})
	assert.Equal(t, []string{"ROBBERY"}, categories(result))

	result = Apply(testRecords(), Criteria{TimesOfDay: []string{incident.BucketEvening}})
	assert.Equal(t, []string{"VANDALISM"}, categories(result))
}

func TestApplySeverityRange(t *testing.T) {
	result := Apply(testRecords(), Criteria{Severity: SeverityRange{Min: 3, Max: 4}})
	assert.Equal(t, []string{"ROBBERY", "FRAUD"}, categories(result))
}

func TestApplySeverityRangeContradictory(t *testing.T) {
	result := Apply(testRecords(), Criteria{Severity: SeverityRange{Min: 5, Max: 1}})
	assert.Equal(t, 0, result.TotalAfter)
	assert.Equal(t, len(testRecords()), result.TotalBefore)
}

func TestApplySeverityToggle(t *testing.T) {
	result := Apply(testRecords(), Criteria{Severity: SeverityToggle{Value: 2}})
	assert.Equal(t, []string{"VANDALISM", "WARRANTS"}, categories(result))

	result = Apply(testRecords(), Criteria{Severity: SeverityToggle{Value: 2, IncludeOthers: true}})
	assert.Equal(t, len(testRecords()), result.TotalAfter)
}

func TestApplyCommutative(t *testing.T) {
	records := testRecords()
	c := Criteria{
		Start:      tp("2024-06-01 00:00:00"),
		Districts:  []string{"CENTRAL"},
		Severity:   SeverityRange{Min: 4, Max: 5},
		TimesOfDay: []string{incident.BucketLateNight, incident.BucketAfternoon},
	}
	first := Apply(records, c)
	second := Apply(first.Records, c)
	require.Equal(t, first.Records, second.Records, "re-applying the same criteria is a no-op")
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := testRecords()
	Apply(records, Criteria{Categories: []string{"ROBBERY"}})
	assert.Equal(t, testRecords(), records)
}
