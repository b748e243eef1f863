package correction

import (
	"fmt"
	"strconv"

	"companyfix/tabular"
)

// RecordsFromTable reads the name and identifier columns of t. Columns
// written by a previous run are picked up as well, so an annotated table can
// be fed back for a later override pass.
func RecordsFromTable(t *tabular.Table, nameCol, idCol string) ([]Record, error) {
	if err := t.RequireColumns(nameCol, idCol); err != nil {
		return nil, err
	}

	records := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		r := Record{
			RawName:        row[nameCol],
			Identifier:     row[idCol],
			NormalizedName: row[ColNormalized],
			MatchedName:    row[ColMatched],
			FinalName:      row[ColFinal],
			Status:         Status(row[ColStatus]),
		}
		if s := row[ColScore]; s != "" {
			score, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("row %d: %s %q: %w", i+1, ColScore, s, err)
			}
			r.MatchScore = score
		}
		if r.Status != StatusManuallyCorrected {
			r.AutoName = r.FinalName
		}
		records[i] = r
	}
	return records, nil
}

// AnnotateTable writes the pipeline columns into the rows of t. records must
// be in row order.
func AnnotateTable(t *tabular.Table, records []Record) error {
	if len(records) != len(t.Rows) {
		return fmt.Errorf("annotate table: %d records for %d rows", len(records), len(t.Rows))
	}
	for _, col := range []string{ColNormalized, ColMatched, ColScore, ColFinal, ColStatus} {
		t.AddColumn(col)
	}
	for i, r := range records {
		row := t.Rows[i]
		row[ColNormalized] = r.NormalizedName
		row[ColMatched] = r.MatchedName
		row[ColScore] = strconv.Itoa(r.MatchScore)
		row[ColFinal] = r.FinalName
		row[ColStatus] = string(r.Status)
	}
	return nil
}
