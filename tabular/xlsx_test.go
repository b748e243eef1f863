package tabular

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXLSXRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "empresas.xlsx")
	in := New("ADJUDICATARIO", "CIF", "IMPORTE")
	in.Append(map[string]string{"ADJUDICATARIO": "Telefónica de España, S.A.U.", "CIF": "A82018474", "IMPORTE": "00120"})
	in.Append(map[string]string{"ADJUDICATARIO": "Repsol", "CIF": "A78374725"})

	require.NoError(t, Write(path, in))

	out, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, in.Header, out.Header)
	require.Len(t, out.Rows, 2)
	require.Equal(t, "Telefónica de España, S.A.U.", out.Rows[0]["ADJUDICATARIO"])
	require.Equal(t, "00120", out.Rows[0]["IMPORTE"], "values stay text")
	require.Equal(t, "", out.Rows[1]["IMPORTE"])
}

func TestReadXLSXMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Read(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}
