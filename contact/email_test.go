package contact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmails(t *testing.T) {
	t.Parallel()

	text := "Escríbenos a Info@Empresa.es o a ventas [at] empresa [dot] es. " +
		"Prensa: prensa @ grupo-ejemplo.com. Logo: logo@2x.png, noreply@empresa.es, info@empresa.es"

	require.Equal(t, []string{"info@empresa.es", "prensa@grupo-ejemplo.com", "ventas@empresa.es"}, Emails(text))
	require.Equal(t, "info@empresa.es", FirstEmail(text))
	require.Equal(t, "", FirstEmail("sin correo"))
}

func TestSanitizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"mailto:Contacto@Empresa.ES?subject=x", "contacto@empresa.es"},
		{" <info@empresa.com>; ", "info@empresa.com"},
		{"info%40empresa.com", "info@empresa.com"},
		{"a@b@c.com", ""},
		{"info@localhost", ""},
		{"info@-bad-.com", ""},
		{"icon@3x.webp", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, SanitizeEmail(tt.in), tt.in)
	}
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	require.Equal(t, "santander.com", RegistrableDomain("www.santander.com"))
	require.Equal(t, "repsol.co.uk", RegistrableDomain("shop.repsol.co.uk"))
	require.True(t, ValidDomain("acciona.es"))
	require.False(t, ValidDomain("acciona"))
}
