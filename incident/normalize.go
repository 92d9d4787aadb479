package incident

import (
	"context"
	"log"
	"strings"

	"crime_pipeline/classify"
)

// Normalize applies the single uppercase rule to every textual attribute.
// It runs exactly once per record at the boundary where the record enters
// the unified store; the transform is idempotent.
func Normalize(r Record) Record {
	r.Category = upper(r.Category)
	r.Descript = upper(r.Descript)
	r.DayOfWeek = upper(r.DayOfWeek)
	r.PdDistrict = upper(r.PdDistrict)
	r.Resolution = upper(r.Resolution)
	r.Address = upper(r.Address)
	r.Latitude = upper(r.Latitude)
	r.Longitude = upper(r.Longitude)
	return r
}

// Standardize converts a raw field mapping from the extractor into exactly
// one canonical record. Keys outside the canonical set are dropped, missing
// keys stay null. The classifier collaborator is invoked with the uppercased
// description; when the description is absent the extracted category (if
// any) is kept as-is. Severity is always recomputed from the final category.
func Standardize(ctx context.Context, fields map[string]*string, clf classify.Classifier) Record {
	r := Record{
		Category:   upper(fields["Category"]),
		Descript:   upper(fields["Descript"]),
		DayOfWeek:  upper(fields["DayOfWeek"]),
		PdDistrict: upper(fields["PdDistrict"]),
		Resolution: upper(fields["Resolution"]),
		Address:    upper(fields["Address"]),
		Latitude:   upper(fields["Latitude"]),
		Longitude:  upper(fields["Longitude"]),
	}
	if raw := fields["Dates"]; raw != nil {
		r.Dates = ParseDateLenient(*raw)
	}

	if r.Descript != nil && strings.TrimSpace(*r.Descript) != "" && clf != nil {
		label, err := clf.Classify(ctx, *r.Descript)
		if err != nil {
			log.Printf("classify failed, keeping extracted category: %v", err)
		} else if label != "" {
			r.Category = &label
		}
	}
	// Classifier output may be new text; normalize once more so the
	// uppercase invariant holds on the finished record.
	r = Normalize(r)
	r.Severity = SeverityFor(r.Category)
	return r
}

func upper(s *string) *string {
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}
