package correction

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"companyfix/tabular"
)

// Curated override dictionary columns.
const (
	ColOriginal  = "original"
	ColCorrected = "corrected"
)

// Overrides maps normalized names to the name a human approved for them.
type Overrides map[string]string

// Add stores a correction for from, normalizing the key. It returns the
// value it replaced, if any.
func (o Overrides) Add(from, to string) (previous string, replaced bool) {
	key := Normalize(from)
	previous, replaced = o[key]
	o[key] = strings.TrimSpace(to)
	return previous, replaced
}

// Lookup returns the override for a record, trying the normalized name first
// and the automatic result second.
func (o Overrides) Lookup(r Record) (string, bool) {
	if v, ok := o[r.NormalizedName]; ok {
		return v, true
	}
	auto := r.AutoName
	if auto == "" {
		auto = r.MatchedName
	}
	if auto == "" {
		return "", false
	}
	v, ok := o[auto]
	return v, ok
}

// ApplyOverrides returns a copy of records with the overrides merged in.
// Applying the same table twice gives the same result.
func ApplyOverrides(records []Record, o Overrides) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	for i := range out {
		r := &out[i]
		if r.AutoName == "" && r.Status != StatusManuallyCorrected {
			r.AutoName = r.FinalName
		}
		v, ok := o.Lookup(*r)
		if !ok {
			continue
		}
		r.ManualName = v
		r.FinalName = v
		r.Status = StatusManuallyCorrected
	}
	return out
}

// LoadOverrides reads an override table. ok is false when the file does not
// exist. Two layouts are understood: a filled-in review export
// (normalized_name, manual_correction) and a curated dictionary
// (original, corrected).
func LoadOverrides(path string) (o Overrides, ok bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat overrides: %w", err)
	}

	t, err := tabular.Read(path)
	if err != nil {
		return nil, true, fmt.Errorf("read overrides: %w", err)
	}

	switch {
	case t.HasColumn(ColNormalized) && t.HasColumn(ColManual):
		return overridesFromReview(t), true, nil
	case t.HasColumn(ColOriginal) && t.HasColumn(ColCorrected):
		return overridesFromCurated(t), true, nil
	}
	return nil, true, fmt.Errorf("read overrides %s: expected columns %s/%s or %s/%s",
		path, ColNormalized, ColManual, ColOriginal, ColCorrected)
}

// Rows left blank or still holding the prefilled final name carry no decision.
func overridesFromReview(t *tabular.Table) Overrides {
	o := make(Overrides)
	for _, row := range t.Rows {
		manual := strings.TrimSpace(row[ColManual])
		if manual == "" || manual == row[ColFinal] {
			continue
		}
		if key := Normalize(row[ColNormalized]); key != "" {
			o[key] = manual
		}
	}
	return o
}

func overridesFromCurated(t *tabular.Table) Overrides {
	o := make(Overrides)
	for _, row := range t.Rows {
		corrected := strings.TrimSpace(row[ColCorrected])
		if corrected == "" {
			continue
		}
		if key := Normalize(row[ColOriginal]); key != "" {
			o[key] = corrected
		}
	}
	return o
}

// SaveOverrides writes the curated dictionary sorted by key.
func SaveOverrides(path string, o Overrides) error {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := tabular.New(ColOriginal, ColCorrected)
	for _, k := range keys {
		t.Append(map[string]string{ColOriginal: k, ColCorrected: o[k]})
	}
	if err := tabular.Write(path, t); err != nil {
		return fmt.Errorf("save overrides: %w", err)
	}
	return nil
}

// AuditEntry is one line of the override audit log.
type AuditEntry struct {
	Time      time.Time
	Original  string
	Corrected string
	Reason    string
}

var auditHeader = []string{"timestamp", ColOriginal, ColCorrected, "reason"}

// AppendAuditLog appends entry to the CSV log at path, writing the header
// when the file is new.
func AppendAuditLog(path string, entry AuditEntry) error {
	_, statErr := os.Stat(path)
	fresh := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(auditHeader); err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	if err := w.Write([]string{
		entry.Time.Format(time.RFC3339),
		entry.Original,
		entry.Corrected,
		entry.Reason,
	}); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	w.Flush()
	return w.Error()
}
