package incident

// severityMap is the static reference mapping from category label to a
// severity level in [1,5]. It is the single source of truth: severity is
// always recomputed from the category, never hand-entered. Categories the
// map does not know (classifier output is not guaranteed to stay inside
// this vocabulary) fall back to 0.
var severityMap = map[string]int{
	"NON-CRIMINAL":           1,
	"SUSPICIOUS OCC":         1,
	"MISSING PERSON":         1,
	"RUNAWAY":                1,
	"RECOVERED VEHICLE":      1,
	"WARRANTS":               2,
	"OTHER OFFENSES":         2,
	"VANDALISM":              2,
	"TRESPASS":               2,
	"DISORDERLY CONDUCT":     2,
	"BAD CHECKS":             2,
	"LARCENY/THEFT":          3,
	"VEHICLE THEFT":          3,
	"FORGERY/COUNTERFEITING": 3,
	"DRUG/NARCOTIC":          3,
	"STOLEN PROPERTY":        3,
	"FRAUD":                  3,
	"BRIBERY":                3,
	"EMBEZZLEMENT":           3,
	"ROBBERY":                4,
	"WEAPON LAWS":            4,
	"BURGLARY":               4,
	"EXTORTION":              4,
	"KIDNAPPING":             5,
	"ARSON":                  5,
}

// SeverityFor looks up the severity for a category. Nil or unknown
// categories map to 0, not an error.
func SeverityFor(category *string) int {
	if category == nil {
		return 0
	}
	return severityMap[*category]
}

// KnownCategories returns the category vocabulary of the severity map.
func KnownCategories() []string {
	out := make([]string, 0, len(severityMap))
	for c := range severityMap {
		out = append(out, c)
	}
	return out
}
