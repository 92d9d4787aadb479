package incident

// competitionRenames aligns alternate-source column names onto the canonical
// list. The source dataset ships its coordinate columns with transposed
// labels, so the rename swaps them back.
var competitionRenames = map[string]string{
	"Latitude (Y)":  "Longitude",
	"Longitude (X)": "Latitude",
}

// ReconcileBatch converts a raw tabular batch from an alternate source into
// canonical records. Columns are renamed through the fixed mapping, columns
// outside the canonical set are dropped, severity is recomputed from the
// category for every row, and dates are coerced permissively (null on
// failure). The output obeys the same uppercase and projection contract as
// Standardize.
func ReconcileBatch(header []string, rows [][]string) []Record {
	targets := make([]string, len(header))
	for i, col := range header {
		name := col
		if renamed, ok := competitionRenames[col]; ok {
			name = renamed
		}
		if !isCanonical(name) {
			name = ""
		}
		targets[i] = name
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, reconcileRow(targets, row))
	}
	return records
}

func reconcileRow(targets []string, row []string) Record {
	var r Record
	for i, name := range targets {
		if name == "" || i >= len(row) {
			continue
		}
		val := row[i]
		switch name {
		case "Dates":
			r.Dates = ParseDateLenient(val)
		case "Severity":
			// ignored: the severity map overrides source values
		case "Category":
			r.Category = nonEmpty(val)
		case "Descript":
			r.Descript = nonEmpty(val)
		case "DayOfWeek":
			r.DayOfWeek = nonEmpty(val)
		case "PdDistrict":
			r.PdDistrict = nonEmpty(val)
		case "Resolution":
			r.Resolution = nonEmpty(val)
		case "Address":
			r.Address = nonEmpty(val)
		case "Latitude":
			r.Latitude = nonEmpty(val)
		case "Longitude":
			r.Longitude = nonEmpty(val)
		}
	}
	r = Normalize(r)
	r.Severity = SeverityFor(r.Category)
	return r
}

func isCanonical(name string) bool {
	for _, col := range Columns {
		if col == name {
			return true
		}
	}
	return false
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
