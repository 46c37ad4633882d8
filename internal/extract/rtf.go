package extract

import (
	"strconv"
	"strings"
)

// Destinations whose content is metadata, not body text.
var rtfSkipGroups = map[string]struct{}{
	"fonttbl": {}, "colortbl": {}, "stylesheet": {}, "info": {}, "pict": {},
	"header": {}, "footer": {}, "xmlnstbl": {}, "listtable": {}, "listoverridetable": {},
	"rsidtbl": {}, "generator": {}, "themedata": {}, "colorschememapping": {}, "datastore": {},
	"latentstyles": {}, "object": {}, "fldinst": {},
}

// RTFText strips RTF control words and groups, keeping body text. Hex escapes
// are decoded as Windows-1252, which covers Spanish accents.
func RTFText(data []byte) string {
	s := string(data)
	var (
		out   strings.Builder
		depth int
		skip  = -1
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			depth++
			if i+2 < len(s) && s[i+1] == '\\' && s[i+2] == '*' && skip < 0 {
				skip = depth
			}
		case '}':
			if skip == depth {
				skip = -1
			}
			depth--
		case '\\':
			if i+1 >= len(s) {
				continue
			}
			n := s[i+1]
			switch {
			case n == '\\' || n == '{' || n == '}':
				if skip < 0 {
					out.WriteByte(n)
				}
				i++
			case n == '\'':
				if i+3 < len(s) && skip < 0 {
					if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
						out.WriteRune(cp1252(byte(v)))
					}
				}
				i += 3
			case isASCIILetter(n):
				j := i + 1
				for j < len(s) && isASCIILetter(s[j]) {
					j++
				}
				word := s[i+1 : j]
				k := j
				if k < len(s) && (s[k] == '-' || isDigit(s[k])) {
					k++
					for k < len(s) && isDigit(s[k]) {
						k++
					}
				}
				arg := s[j:k]
				if k < len(s) && s[k] == ' ' {
					k++
				}
				i = k - 1
				if _, ok := rtfSkipGroups[word]; ok && skip < 0 {
					skip = depth
					continue
				}
				if skip >= 0 {
					continue
				}
				switch word {
				case "par", "line", "sect", "page", "row":
					out.WriteByte('\n')
				case "tab", "cell":
					out.WriteByte('\t')
				case "u":
					if v, err := strconv.Atoi(arg); err == nil {
						if v < 0 {
							v += 65536
						}
						out.WriteRune(rune(v))
						// \uN is followed by a one-character fallback.
						if i+1 < len(s) && s[i+1] != '\\' && s[i+1] != '{' && s[i+1] != '}' {
							i++
						}
					}
				}
			default:
				i++
			}
		case '\r', '\n':
		default:
			if skip < 0 {
				out.WriteByte(c)
			}
		}
	}
	return out.String()
}

func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool       { return c >= '0' && c <= '9' }

var cp1252High = map[byte]rune{
	0x80: '€', 0x91: '‘', 0x92: '’', 0x93: '“', 0x94: '”', 0x96: '–', 0x97: '—', 0x85: '…',
}

func cp1252(b byte) rune {
	if r, ok := cp1252High[b]; ok {
		return r
	}
	return rune(b)
}
