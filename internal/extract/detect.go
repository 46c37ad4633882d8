package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

type Kind string

const (
	KindDocx    Kind = "docx"
	KindPDF     Kind = "pdf"
	KindRTF     Kind = "rtf"
	KindHTML    Kind = "html"
	KindUnknown Kind = "unknown"
)

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	pdfMagic = []byte("%PDF")
	rtfMagic = []byte(`{\rtf`)
)

// DetectKind identifies a payload by its leading bytes.
func DetectKind(b []byte) Kind {
	switch {
	case bytes.HasPrefix(b, zipMagic):
		return KindDocx
	case bytes.HasPrefix(b, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(b, rtfMagic):
		return KindRTF
	case LooksHTML(b):
		return KindHTML
	default:
		return KindUnknown
	}
}

// LooksHTML reports whether the start of b is an HTML page.
func LooksHTML(b []byte) bool {
	head := b
	if len(head) > 512 {
		head = head[:512]
	}
	s := strings.ToLower(strings.TrimSpace(string(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")))))
	return strings.HasPrefix(s, "<!doctype html") || strings.HasPrefix(s, "<html") ||
		strings.Contains(s, "<head>") || strings.Contains(s, "<body")
}

// DecodeText reads b as UTF-8, replacing invalid sequences.
func DecodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}
