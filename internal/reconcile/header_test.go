package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleHeader = `

REPÚBLICA DE COLOMBIA
CORTE CONSTITUCIONAL
Sala Tercera de Revisión

SENTENCIA T - 123 / 23

Referencia: Expediente T-9.123.456
Acción de tutela instaurada por Ana contra la EPS
Magistrada ponente:
Diana Fajardo Rivera
Bogotá D.C., doce (12) de abril de dos mil veintitrés (2023)
`

func TestExtractHeader(t *testing.T) {
	got := ExtractHeader(sampleHeader)
	require.Equal(t, "T-123/23", got.CaseNumber)
	require.Equal(t, "Diana Fajardo Rivera", got.ReportingJudge)
	require.Equal(t, "Sala Tercera de Revisión", got.Chamber)
	require.Equal(t, "T-9.123.456", got.DocketNumber)
}

func TestExtractHeaderOnlyScansLeadingLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < HeaderLines; i++ {
		b.WriteString("considerando\n")
	}
	b.WriteString("Magistrado ponente: Jorge Enrique Ibáñez Najar\n")
	got := ExtractHeader(b.String())
	require.Empty(t, got.ReportingJudge)
}

func TestExtractHeaderUnaccentedChamber(t *testing.T) {
	got := ExtractHeader("SENTENCIA T-077/24\nSALA SEPTIMA DE REVISION\n")
	require.Equal(t, "Sala Séptima de Revisión", got.Chamber)
}
