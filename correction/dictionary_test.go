package correction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildDictionary(t *testing.T) {
	t.Parallel()

	normalized := []string{"A", "BB", "BB", "CCC", "D", "CCC", "A", ""}
	dict := BuildDictionary(normalized, 2, []string{"zz top", "bb"})

	require.Equal(t, []string{"ZZ TOP", "CCC", "BB", "A"}, dict.Entries())
	require.False(t, dict.Contains("D"), "names below the frequency floor are dropped")
	require.True(t, dict.Contains("ZZ TOP"), "extra variants are kept regardless of frequency")
	require.False(t, dict.Contains(""))
}

func TestBuildDictionaryLengthOrder(t *testing.T) {
	t.Parallel()

	dict := BuildDictionary([]string{"INDRA", "INDRA", "REPSOL", "REPSOL", "ENDESA", "ENDESA"}, 2, nil)
	entries := dict.Entries()
	for i := 1; i < len(entries); i++ {
		require.GreaterOrEqual(t, len(entries[i-1]), len(entries[i]))
	}
	require.Equal(t, []string{"REPSOL", "ENDESA", "INDRA"}, entries, "ties keep first-seen order")
}

func TestDictionaryIsImmutable(t *testing.T) {
	t.Parallel()

	dict := NewDictionary([]string{"IBERDROLA"})
	entries := dict.Entries()
	entries[0] = "CHANGED"
	require.Equal(t, []string{"IBERDROLA"}, dict.Entries())

	var empty Dictionary
	require.Zero(t, empty.Len())
	require.False(t, empty.Contains("X"))
}
