package reconcile

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HeaderLines is how many non-empty leading lines ExtractHeader scans.
const HeaderLines = 15

var (
	headerCaseRe   = regexp.MustCompile(`(?i)\b(SU|[TCA])\s*[-.]\s*(\d{1,4})\s*/\s*(\d{2,4})\b`)
	headerJudgeRe  = regexp.MustCompile(`(?i)magistrad[oa]\s+(?:ponente|sustanciador|sustanciadora)\s*[:.]?\s*(.*)$`)
	headerDocketRe = regexp.MustCompile(`(?i)expedientes?\s*(?:no\.?|n[úu]mero)?\s*[:.]?\s*([A-Z]{1,2}\s*-\s*\d+(?:[.,]\d+)*)`)
)

// ExtractHeader pulls candidate field values from the header of a ruling.
func ExtractHeader(text string) Fields {
	var out Fields
	lines := headerLines(text, HeaderLines)
	for i, line := range lines {
		if out.CaseNumber == "" {
			if m := headerCaseRe.FindStringSubmatch(line); m != nil {
				out.CaseNumber = strings.ToUpper(m[1]) + "-" + m[2] + "/" + m[3]
			}
		}
		if out.ReportingJudge == "" {
			if m := headerJudgeRe.FindStringSubmatch(line); m != nil {
				name := cleanName(m[1])
				if name == "" && i+1 < len(lines) {
					name = cleanName(lines[i+1])
				}
				out.ReportingJudge = name
			}
		}
		if out.DocketNumber == "" {
			if m := headerDocketRe.FindStringSubmatch(line); m != nil {
				out.DocketNumber = strings.ToUpper(strings.ReplaceAll(m[1], " ", ""))
			}
		}
		if out.Chamber == "" {
			if c := canonicalChamber(line); c != "" {
				out.Chamber = titleChamber(c)
			}
		}
	}
	return out
}

func headerLines(text string, n int) []string {
	out := make([]string, 0, n)
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
		if len(out) == n {
			break
		}
	}
	return out
}

func cleanName(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ".,;:")
	return strings.Join(strings.Fields(s), " ")
}

// titleChamber turns "sala tercera de revisión" into "Sala Tercera de Revisión".
func titleChamber(c string) string {
	words := strings.Fields(c)
	for i, w := range words {
		if w == "de" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
