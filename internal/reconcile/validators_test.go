package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	cases := []struct {
		field FieldType
		in    string
		want  bool
	}{
		{CaseNumber, "T-123/23", true},
		{CaseNumber, "SU-045/2022", true},
		{CaseNumber, "C-1/9", false},
		{CaseNumber, "T123/23", false},
		{ReportingJudge, "Diana Fajardo Rivera", true},
		{ReportingJudge, "Natalia Ángel Cabo", true},
		{ReportingJudge, "José Fernando Reyes de la Cuartas", true},
		{ReportingJudge, "Bogotá D.C.", false},
		{ReportingJudge, "J. Pérez", false},
		{ReportingJudge, "Calle 12 Número Cuarenta", false},
		{ReportingJudge, "Uno Dos Tres Cuatro Cinco", false},
		{ReportingJudge, "magistrado ponente", false},
		{Chamber, "SALA PLENA", true},
		{Chamber, "la Sala Séptima de Revisión de Tutelas", true},
		{Chamber, "Sala Décima de Revisión", false},
		{Chamber, "Sala Septima de Revision", true},
		{Chamber, "SALA PRIMERA DE REVISION", true},
		{DocketNumber, "T-9.123.456", true},
		{DocketNumber, "D-15000", true},
		{DocketNumber, "T-9.123.456.789.0", false},
		{DocketNumber, "9.123.456", false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Valid(c.field, c.in), "%s %q", c.field, c.in)
	}
}

func TestLooksTruncated(t *testing.T) {
	for _, s := range []string{"Sala Primera...", "Tema…", "derecho a la", "salud y", "Expediente:", "Juan,"} {
		require.True(t, LooksTruncated(s), s)
	}
	for _, s := range []string{"", "Sala Plena", "derecho a la salud", "de"} {
		require.False(t, LooksTruncated(s), s)
	}
}
