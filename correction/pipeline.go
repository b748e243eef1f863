// Package correction normalizes company names and corrects misspellings
// against a dictionary built from the names themselves.
package correction

// Pipeline runs normalization, dictionary construction, scoring and the
// word-level fallback over a batch of records.
type Pipeline struct {
	cfg  Config
	opts []MatcherOption
}

// Result is the output of one pipeline run.
type Result struct {
	Records    []Record
	Dictionary Dictionary
}

func NewPipeline(cfg Config, opts ...MatcherOption) *Pipeline {
	cfg.ApplyDefaults()
	return &Pipeline{cfg: cfg, opts: opts}
}

func (p *Pipeline) Config() Config { return p.cfg }

// Run corrects the records. The input slice is not modified.
func (p *Pipeline) Run(records []Record) Result {
	out := make([]Record, len(records))
	normalized := make([]string, len(records))
	for i, r := range records {
		r.NormalizedName = Normalize(r.RawName)
		out[i] = r
		normalized[i] = r.NormalizedName
	}

	dict := BuildDictionary(normalized, p.cfg.MinFrequency, p.cfg.ExtraVariants)
	opts := append([]MatcherOption{
		WithPrefixLength(p.cfg.PrefixLength),
		WithMaxLengthDrift(p.cfg.MaxLengthDrift),
	}, p.opts...)
	matcher := NewMatcher(dict, opts...)

	for i := range out {
		p.correct(matcher, &out[i])
	}
	return Result{Records: out, Dictionary: dict}
}

func (p *Pipeline) correct(m *Matcher, r *Record) {
	match := m.Match(r.NormalizedName, p.cfg.MatchThreshold)
	r.MatchedName = match.Name
	r.MatchScore = match.Score
	r.FinalName = match.Name

	// an accepted dictionary entry is never split up again
	if !match.Accepted && match.Score < p.cfg.FallbackTrigger {
		r.FinalName = m.CorrectByParts(match.Name, p.cfg.FallbackThreshold)
	}

	r.AutoName = r.FinalName
	r.ManualName = ""
	r.Status = StatusUnchanged
	if r.Corrected() {
		r.Status = StatusAutoCorrected
	}
}
