package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeTextRemovesNulAndControls(t *testing.T) {
	in := "ab\x00cd\x01\x02\n\txy\x7f"
	require.Equal(t, "abcd\n\txy", SanitizeText(in))
}

func TestSanitizeTextReplacesInvalidUTF8(t *testing.T) {
	out := SanitizeText("sala\xffplena")
	require.Equal(t, "sala�plena", out)
}

func TestTruncateRunesCountsCharacters(t *testing.T) {
	require.Equal(t, "Bogo", TruncateRunes("Bogotá", 4))
	require.Equal(t, "Bogotá", TruncateRunes("Bogotá", 6))
	require.Equal(t, 6, RuneLen("Bogotá"))
}
