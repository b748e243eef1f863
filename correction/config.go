package correction

// Band is an open score interval (Low, High).
type Band struct {
	Low  int `yaml:"low"`
	High int `yaml:"high"`
}

// Contains reports whether Low < score < High.
func (b Band) Contains(score int) bool {
	return score > b.Low && score < b.High
}

// Config holds every tunable of the correction pipeline and its exports.
type Config struct {
	MinFrequency      int      `yaml:"min_frequency"`
	MatchThreshold    int      `yaml:"match_threshold"`
	FallbackTrigger   int      `yaml:"fallback_trigger"`
	FallbackThreshold int      `yaml:"fallback_threshold"`
	PrefixLength      int      `yaml:"prefix_length"`
	MaxLengthDrift    int      `yaml:"max_length_drift"`
	ExtraVariants     []string `yaml:"extra_variants"`

	ReviewBand            Band `yaml:"review_band"`
	SuspiciousMinScore    int  `yaml:"suspicious_min_score"`
	SuspiciousLengthDelta int  `yaml:"suspicious_length_delta"`
}

func DefaultConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset (zero or negative) field.
func (c *Config) ApplyDefaults() {
	if c.MinFrequency <= 0 {
		c.MinFrequency = 2
	}
	if c.MatchThreshold <= 0 {
		c.MatchThreshold = 80
	}
	if c.FallbackTrigger <= 0 {
		c.FallbackTrigger = 70
	}
	if c.FallbackThreshold <= 0 {
		c.FallbackThreshold = DefaultFallbackThreshold
	}
	if c.PrefixLength <= 0 {
		c.PrefixLength = DefaultPrefixLength
	}
	if c.MaxLengthDrift <= 0 {
		c.MaxLengthDrift = DefaultMaxLengthDrift
	}
	if c.ReviewBand.Low <= 0 && c.ReviewBand.High <= 0 {
		c.ReviewBand = Band{Low: 60, High: 85}
	}
	if c.SuspiciousMinScore <= 0 {
		c.SuspiciousMinScore = 85
	}
	if c.SuspiciousLengthDelta <= 0 {
		c.SuspiciousLengthDelta = 20
	}
}
