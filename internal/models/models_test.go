package models

import "testing"

func TestSentenceTypeFromID(t *testing.T) {
	cases := map[string]string{
		"T-123/23":  "T",
		"su-045/22": "SU",
		"C-200/21":  "C",
		"A-10/20":   "A",
		"X-1/20":    "UNKNOWN",
		"":          "UNKNOWN",
	}
	for in, want := range cases {
		if got := SentenceTypeFromID(in); got != want {
			t.Fatalf("%q: got %s want %s", in, got, want)
		}
	}
}

func TestCuratable(t *testing.T) {
	for _, s := range []DocumentStatus{DocumentPending, DocumentApproved} {
		if !s.Curatable() {
			t.Fatalf("%s should be curatable", s)
		}
	}
	for _, s := range []DocumentStatus{DocumentReady, DocumentRejected, DocumentArchived} {
		if s.Curatable() {
			t.Fatalf("%s should not be curatable", s)
		}
	}
}
