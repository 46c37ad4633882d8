package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChooseJudgeSkipsAddressAndInitials(t *testing.T) {
	got, ok := Choose(ReportingJudge, []string{"Bogotá D.C.", "Juan Carlos Pérez Gómez", "J. Pérez"})
	require.True(t, ok)
	require.Equal(t, "Juan Carlos Pérez Gómez", got)
}

func TestChooseDropsPlaceholders(t *testing.T) {
	_, ok := Choose(Chamber, []string{"", "  ", "No disponible", "N/A"})
	require.False(t, ok)

	got, ok := Choose(Chamber, []string{"null", "Sala Quinta de Revisión"})
	require.True(t, ok)
	require.Equal(t, "Sala Quinta de Revisión", got)
}

func TestChooseSingleCandidateIsReturnedAsIs(t *testing.T) {
	got, ok := Choose(CaseNumber, []string{"", " not a case number "})
	require.True(t, ok)
	require.Equal(t, "not a case number", got)
}

func TestChooseFirstValidWins(t *testing.T) {
	got, ok := Choose(CaseNumber, []string{"sentencia t 12", "T-123/23", "SU-045/2022"})
	require.True(t, ok)
	require.Equal(t, "T-123/23", got)
}

func TestChooseFallbackPrefersUntruncatedThenLongest(t *testing.T) {
	got, ok := Choose(Chamber, []string{"Sala de decisión de", "Sala de decisión", "Sala"})
	require.True(t, ok)
	require.Equal(t, "Sala de decisión", got)

	got, ok = Choose(DocketNumber, []string{"exp 1234", "expediente 12345"})
	require.True(t, ok)
	require.Equal(t, "expediente 12345", got)
}

func TestChooseTiesGoToEarliest(t *testing.T) {
	got, _ := Choose(DocketNumber, []string{"abcd", "wxyz"})
	require.Equal(t, "abcd", got)
}

func TestChooseIsDeterministic(t *testing.T) {
	in := []string{"J. Pérez", "Consejo de...", "Consejo Superior de Bogotá", "Diana Fajardo Rivera"}
	first, _ := Choose(ReportingJudge, in)
	for i := 0; i < 50; i++ {
		got, _ := Choose(ReportingJudge, in)
		require.Equal(t, first, got)
	}
	require.Equal(t, "Diana Fajardo Rivera", first)
}

func TestMergeOrdersSources(t *testing.T) {
	curator := Fields{Chamber: "Sala Plena"}
	header := Fields{CaseNumber: "T-500/23", ReportingJudge: "Bogotá D.C."}
	stored := Fields{CaseNumber: "T 500", ReportingJudge: "Jorge Enrique Ibáñez Najar", DocketNumber: "T-9.123.456"}

	got := Merge(curator, header, stored)
	require.Equal(t, Fields{
		CaseNumber:     "T-500/23",
		ReportingJudge: "Jorge Enrique Ibáñez Najar",
		Chamber:        "Sala Plena",
		DocketNumber:   "T-9.123.456",
	}, got)
	require.False(t, got.Missing())
	require.True(t, Fields{CaseNumber: "T-1/20"}.Missing())
}
