package correction

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"companyfix/tabular"
)

// Kind of a correction in the correction log.
const (
	KindManual    = "manual"
	KindAutomatic = "automatic"
	KindUnchanged = "unchanged"
)

// ReviewCandidates returns the records whose score lies strictly inside band:
// close enough to be a likely match, too far to be trusted blindly.
func ReviewCandidates(records []Record, band Band) []Record {
	var out []Record
	for _, r := range records {
		if band.Contains(r.MatchScore) {
			out = append(out, r)
		}
	}
	return out
}

// SuspiciousCorrections returns high-scoring records whose final name either
// lost the first word of the normalized name or grew by more than
// lengthDelta characters.
func SuspiciousCorrections(records []Record, minScore, lengthDelta int) []Record {
	var out []Record
	for _, r := range records {
		if r.MatchScore < minScore || r.NormalizedName == "" {
			continue
		}
		first := strings.Fields(r.NormalizedName)[0]
		grown := utf8.RuneCountInString(r.FinalName) - utf8.RuneCountInString(r.NormalizedName)
		if !strings.Contains(r.FinalName, first) || grown > lengthDelta {
			out = append(out, r)
		}
	}
	return out
}

// CorrectionKind classifies how the final name came about.
func CorrectionKind(r Record) string {
	switch {
	case r.Status == StatusManuallyCorrected:
		return KindManual
	case r.Corrected():
		return KindAutomatic
	}
	return KindUnchanged
}

// ReviewTable is the export a human fills in; manual_correction starts out
// as the current final name.
func ReviewTable(records []Record, nameCol, idCol string) *tabular.Table {
	t := tabular.New(nameCol, idCol, ColNormalized, ColMatched, ColScore, ColFinal, ColManual)
	for _, r := range records {
		row := auditRow(r, nameCol, idCol)
		row[ColManual] = r.FinalName
		t.Append(row)
	}
	return t
}

func SuspiciousTable(records []Record, nameCol, idCol string) *tabular.Table {
	t := tabular.New(nameCol, idCol, ColNormalized, ColMatched, ColScore, ColFinal, ColStatus)
	for _, r := range records {
		t.Append(auditRow(r, nameCol, idCol))
	}
	return t
}

// LogTable lists every record with the automatic and manual outcome side by side.
func LogTable(records []Record) *tabular.Table {
	t := tabular.New(ColNormalized, ColAuto, ColManual, ColFinal, ColKind, ColEditDistance)
	for _, r := range records {
		t.Append(map[string]string{
			ColNormalized:   r.NormalizedName,
			ColAuto:         r.AutoName,
			ColManual:       r.ManualName,
			ColFinal:        r.FinalName,
			ColKind:         CorrectionKind(r),
			ColEditDistance: strconv.Itoa(levenshtein.ComputeDistance(r.NormalizedName, r.FinalName)),
		})
	}
	return t
}

func auditRow(r Record, nameCol, idCol string) map[string]string {
	return map[string]string{
		nameCol:       r.RawName,
		idCol:         r.Identifier,
		ColNormalized: r.NormalizedName,
		ColMatched:    r.MatchedName,
		ColScore:      strconv.Itoa(r.MatchScore),
		ColFinal:      r.FinalName,
		ColStatus:     string(r.Status),
	}
}
