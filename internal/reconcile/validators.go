package reconcile

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"juriscope/internal/util"
)

var (
	caseNumberRe = regexp.MustCompile(`^(SU|[TCASU])-\d+/\d{2,4}$`)
	docketRe     = regexp.MustCompile(`^[A-Z]{1,2}-\d+([.,]\d+)*$`)
)

const maxDocketLen = 15

var nameConnectors = map[string]struct{}{
	"de": {}, "del": {}, "la": {}, "las": {}, "los": {}, "y": {}, "van": {}, "von": {},
}

var addressTokens = map[string]struct{}{
	"d.c.": {}, "d.c": {}, "dc": {}, "bogotá": {}, "bogota": {}, "calle": {}, "carrera": {},
	"cra": {}, "cra.": {}, "avenida": {}, "av.": {}, "no.": {}, "piso": {}, "oficina": {},
	"colombia": {}, "medellín": {}, "cali": {},
}

var chamberNames = []string{
	"sala plena",
	"sala primera de revisión",
	"sala segunda de revisión",
	"sala tercera de revisión",
	"sala cuarta de revisión",
	"sala quinta de revisión",
	"sala sexta de revisión",
	"sala séptima de revisión",
	"sala octava de revisión",
	"sala novena de revisión",
}

// Valid applies the format validator for field.
func Valid(field FieldType, v string) bool {
	switch field {
	case CaseNumber:
		return caseNumberRe.MatchString(v)
	case ReportingJudge:
		return validJudge(v)
	case Chamber:
		return canonicalChamber(v) != ""
	case DocketNumber:
		return len(v) <= maxDocketLen && docketRe.MatchString(v)
	}
	return false
}

func validJudge(v string) bool {
	n := utf8.RuneCountInString(v)
	if n < 10 || n > 60 {
		return false
	}
	names := 0
	for _, tok := range strings.Fields(v) {
		low := strings.ToLower(tok)
		if _, ok := addressTokens[low]; ok {
			return false
		}
		if _, ok := nameConnectors[low]; ok && tok == low {
			continue
		}
		if !nameToken(tok) {
			return false
		}
		names++
	}
	return names >= 2 && names <= 4
}

func nameToken(tok string) bool {
	first, _ := utf8.DecodeRuneInString(tok)
	if !unicode.IsUpper(first) {
		return false
	}
	for _, r := range tok {
		if unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsLetter(r) && r != '.' && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

// canonicalChamber returns the known chamber name contained in v, or "".
// canonicalChamber matches without regard to case or accents and returns the
// accented name.
func canonicalChamber(v string) string {
	low := util.FoldAccents(strings.ToLower(v))
	// Numbered chambers take precedence over Sala Plena.
	for i := len(chamberNames) - 1; i >= 0; i-- {
		if strings.Contains(low, util.FoldAccents(chamberNames[i])) {
			return chamberNames[i]
		}
	}
	return ""
}
