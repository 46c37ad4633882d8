package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Sentencia T-123/23: Derecho a la Salud": "sentencia-t-123-23-derecho-a-la-salud",
		"  Acción de tutela — niños  ":           "accion-de-tutela-ninos",
		"¡¿?!":                                   "articulo",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugifyCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "palabra "
	}
	s := Slugify(long)
	require.LessOrEqual(t, len(s), 80)
	require.NotEqual(t, '-', rune(s[len(s)-1]))
}

func TestFoldAccents(t *testing.T) {
	require.Equal(t, "Sala Septima de Revision", FoldAccents("Sala Séptima de Revisión"))
	require.Equal(t, "Ibanez", FoldAccents("Ibáñez"))
}
