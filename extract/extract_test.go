package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `CITY POLICE DEPARTMENT
Report Number: 2024-001
Date & Time: 2024-06-04 13:30:00
Category: Robbery
Detailed Description: Suspect took a phone
from the victim at gunpoint.
Police District: Central
Resolution: Arrest, Booked
Incident Location: 800 Market St
Coordinates: (37.7749, -122.4194)
`

func strVal(t *testing.T, fields map[string]*string, key string) string {
	t.Helper()
	require.NotNil(t, fields[key], "field %s", key)
	return *fields[key]
}

func TestFieldsFullReport(t *testing.T) {
	fields := Fields(sampleReport)

	assert.Equal(t, "2024-001", strVal(t, fields, "Report Number"))
	assert.Equal(t, "2024-06-04 13:30:00", strVal(t, fields, "Dates"))
	assert.Equal(t, "Robbery", strVal(t, fields, "Category"))
	assert.Equal(t, "Suspect took a phone\nfrom the victim at gunpoint.", strVal(t, fields, "Descript"))
	assert.Equal(t, "Central", strVal(t, fields, "PdDistrict"))
	assert.Equal(t, "Arrest, Booked", strVal(t, fields, "Resolution"))
	assert.Equal(t, "800 Market St", strVal(t, fields, "Address"))
	assert.Equal(t, "37.7749", strVal(t, fields, "Latitude"))
	assert.Equal(t, "-122.4194", strVal(t, fields, "Longitude"))
}

func TestFieldsDerivesWeekday(t *testing.T) {
	fields := Fields(sampleReport)
	// 2024-06-04 is a Tuesday.
	assert.Equal(t, "TUESDAY", strVal(t, fields, "DayOfWeek"))
}

func TestFieldsMalformedDateLeavesWeekdayNull(t *testing.T) {
	fields := Fields("Date & Time: not a date\nCategory: Arson\n")
	assert.Nil(t, fields["DayOfWeek"])
	assert.Equal(t, "not a date", strVal(t, fields, "Dates"))
	assert.Equal(t, "Arson", strVal(t, fields, "Category"))
}

func TestFieldsMalformedCoordinates(t *testing.T) {
	fields := Fields("Coordinates: (37.7749 -122.4194)\n")
	assert.Nil(t, fields["Latitude"])
	assert.Nil(t, fields["Longitude"])
}

func TestFieldsEmptyText(t *testing.T) {
	fields := Fields("")
	require.Len(t, fields, 10)
	for key, val := range fields {
		assert.Nil(t, val, "field %s", key)
	}
}

func TestFieldsDescriptionStopsAtDistrictMarker(t *testing.T) {
	fields := Fields(sampleReport)
	desc := strVal(t, fields, "Descript")
	assert.NotContains(t, desc, "Police District")
}

func TestFieldsMissingFieldDoesNotAffectOthers(t *testing.T) {
	fields := Fields("Report Number: X-9\nResolution: None\n")
	assert.Equal(t, "X-9", strVal(t, fields, "Report Number"))
	assert.Equal(t, "None", strVal(t, fields, "Resolution"))
	assert.Nil(t, fields["Category"])
	assert.Nil(t, fields["Address"])
}
