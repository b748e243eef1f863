package correction

// Status tells how the final name of a record was obtained.
type Status string

const (
	StatusUnchanged         Status = "unchanged"
	StatusAutoCorrected     Status = "auto-corrected"
	StatusManuallyCorrected Status = "manually-corrected"
)

// Output column names shared by the exports.
const (
	ColNormalized   = "normalized_name"
	ColMatched      = "matched_name"
	ColScore        = "match_score"
	ColFinal        = "final_name"
	ColStatus       = "correction_status"
	ColManual       = "manual_correction"
	ColAuto         = "auto_corrected"
	ColKind         = "correction_kind"
	ColEditDistance = "edit_distance"
)

// Record is one company row travelling through the pipeline.
type Record struct {
	RawName    string
	Identifier string

	NormalizedName string
	MatchedName    string
	MatchScore     int

	// AutoName is the final name before manual overrides.
	AutoName string
	// ManualName is the override that was applied, if any.
	ManualName string

	FinalName string
	Status    Status
}

// Corrected reports whether the final name differs from the normalized one.
func (r Record) Corrected() bool {
	return r.FinalName != r.NormalizedName
}
