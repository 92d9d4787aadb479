package incident

// Merge unions a normalized batch into the current record set:
// append-then-deduplicate across every canonical attribute, preserving
// first-seen order. Merging the same batch twice yields the same result as
// merging it once. This is the only operation in the pipeline that may
// shrink a record count.
func Merge(existing, batch []Record) (merged []Record, dropped int) {
	seen := make(map[string]struct{}, len(existing)+len(batch))
	merged = make([]Record, 0, len(existing)+len(batch))
	for _, r := range existing {
		key := r.DedupeKey()
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range batch {
		key := r.DedupeKey()
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}
	return merged, dropped
}
