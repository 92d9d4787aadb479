package incident

import (
	"encoding/csv"
	"io"
)

// WriteCSV renders records in the canonical column order with a header row.
// This is the only structural contract other layers rely on when exchanging
// tabular batches with the core.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		row := make([]string, 0, len(Columns))
		for _, col := range Columns {
			row = append(row, r.value(col))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRawCSV reads an arbitrary tabular batch: header plus rows. Callers
// feed the result through ReconcileBatch to reach the canonical schema.
func ReadRawCSV(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

// ReadCSV reads a canonical-schema batch back into records. Severity is
// recomputed from the category rather than trusted from the file.
func ReadCSV(r io.Reader) ([]Record, error) {
	header, rows, err := ReadRawCSV(r)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, nil
	}
	return ReconcileBatch(header, rows), nil
}
