package correction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCorrectByParts(t *testing.T) {
	t.Parallel()

	m := NewMatcher(NewDictionary([]string{"TELEFONICA", "IBERDROLA", "ABCD"}))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"misspelled word is replaced", "GRUPO TELEFONCA SL", "GRUPO TELEFONICA SL"},
		{"short words pass through", "ABC TELEFONCA", "ABC TELEFONICA"},
		{"single word is left alone", "TELEFONCA", "TELEFONCA"},
		{"whitespace is collapsed", "  GRUPO   IBERDROLA ", "GRUPO IBERDROLA"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, m.CorrectByParts(tt.in, DefaultFallbackThreshold))
		})
	}
}

func TestCorrectByPartsShortWordWouldMatch(t *testing.T) {
	t.Parallel()

	m := NewMatcher(NewDictionary([]string{"ABCD", "TELEFONICA"}))

	// on its own the three-letter word is close enough to be corrected
	require.Equal(t, "ABCD", m.Match("ABC", DefaultFallbackThreshold).Name)
	require.Equal(t, "ABC TELEFONICA", m.CorrectByParts("ABC TELEFONCA", DefaultFallbackThreshold))
}
