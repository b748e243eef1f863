package correction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuzzyWeighted(t *testing.T) {
	t.Parallel()

	f := Fuzzy{}
	require.Equal(t, 100.0, f.Weighted("REPSOL", "REPSOL"))
	require.Zero(t, f.Weighted("", "REPSOL"))
	require.Zero(t, f.Weighted("REPSOL", ""))
	require.GreaterOrEqual(t, f.Weighted("SANTANDER BANCO", "BANCO SANTANDER"), 94.0, "word order barely matters")
	require.GreaterOrEqual(t, f.Weighted("INDRA", "INDRA SISTEMAS SA"), 85.0, "containment scores high")
	require.Less(t, f.Weighted("ZZYX HOLDINGS", "BANCO SANTANDER SA"), 60.0)
}

func TestFuzzyTokenSet(t *testing.T) {
	t.Parallel()

	f := Fuzzy{}
	require.Equal(t, 100.0, f.TokenSet("INDRA", "INDRA SISTEMAS SA"), "subset of words")
	require.Equal(t, 100.0, f.TokenSet("SA FERROVIAL", "FERROVIAL SA"))
	require.Zero(t, f.TokenSet("", "FERROVIAL"))
	require.Less(t, f.TokenSet("ACCIONA AGUA", "FERROVIAL SERVICIOS"), 60.0)
}

func TestRatioBounds(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"", ""}, {"A", ""}, {"ABC", "XYZ"}, {"BANC0", "BANCO"}, {"A B C", "C B A"},
	}
	for _, p := range pairs {
		for _, score := range []float64{
			ratio(p[0], p[1]), partialRatio(p[0], p[1]), tokenSortRatio(p[0], p[1]),
			tokenSetRatio(p[0], p[1]), weightedRatio(p[0], p[1]),
		} {
			require.GreaterOrEqual(t, score, 0.0)
			require.LessOrEqual(t, score, 100.0)
		}
	}
	require.Equal(t, 80.0, ratio("BANC0", "BANCO"))
	require.Equal(t, 100.0, partialRatio("SANTANDER", "BANCO SANTANDER SA"))
}
