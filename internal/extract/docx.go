package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Sections splits a ruling into its conventional parts.
type Sections struct {
	Intro    string `json:"intro,omitempty"`
	Findings string `json:"findings,omitempty"`
	Ruling   string `json:"ruling,omitempty"`
	Other    string `json:"other,omitempty"`
}

type Structured struct {
	FullText  string   `json:"full_text"`
	Sections  Sections `json:"sections"`
	WordCount int      `json:"word_count"`
}

// StructuredExtractor reads an office binary. A nil result means nothing extractable.
type StructuredExtractor interface {
	ExtractFromBinary(data []byte, title string) (*Structured, error)
}

type DocxExtractor struct{}

const docxBody = "word/document.xml"

func (DocxExtractor) ExtractFromBinary(data []byte, title string) (*Structured, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return nil, nil
	}
	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("open docx body: %w", err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return nil, err
	}
	if len(paragraphs) == 0 {
		return nil, nil
	}
	if t := strings.TrimSpace(title); t != "" && !strings.EqualFold(paragraphs[0], t) {
		paragraphs = append([]string{t}, paragraphs...)
	}
	full := strings.Join(paragraphs, "\n")
	return &Structured{
		FullText:  full,
		Sections:  splitSections(paragraphs),
		WordCount: len(strings.Fields(full)),
	}, nil
}

func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    []string
		cur    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				cur.WriteByte('\t')
			case "br", "cr":
				cur.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if p := strings.TrimSpace(cur.String()); p != "" {
					out = append(out, p)
				}
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	if p := strings.TrimSpace(cur.String()); p != "" {
		out = append(out, p)
	}
	return out, nil
}

type sectionKind int

const (
	secIntro sectionKind = iota
	secFindings
	secRuling
	secOther
)

var sectionHeadings = []struct {
	prefix string
	kind   sectionKind
}{
	{"ANTECEDENTES", secIntro},
	{"I. ANTECEDENTES", secIntro},
	{"CONSIDERACIONES", secFindings},
	{"FUNDAMENTOS", secFindings},
	{"II. CONSIDERACIONES", secFindings},
	{"RESUELVE", secRuling},
	{"DECISIÓN", secRuling},
	{"III. DECISIÓN", secRuling},
	{"SALVAMENTO DE VOTO", secOther},
	{"ACLARACIÓN DE VOTO", secOther},
}

func headingKind(p string) (sectionKind, bool) {
	if len([]rune(p)) > 60 {
		return 0, false
	}
	u := strings.ToUpper(strings.TrimRightFunc(p, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSpace(r) }))
	for _, h := range sectionHeadings {
		if strings.HasPrefix(u, h.prefix) {
			return h.kind, true
		}
	}
	return 0, false
}

func splitSections(paragraphs []string) Sections {
	parts := map[sectionKind][]string{}
	kind := secIntro
	for _, p := range paragraphs {
		if k, ok := headingKind(p); ok {
			kind = k
			continue
		}
		parts[kind] = append(parts[kind], p)
	}
	return Sections{
		Intro:    strings.Join(parts[secIntro], "\n"),
		Findings: strings.Join(parts[secFindings], "\n"),
		Ruling:   strings.Join(parts[secRuling], "\n"),
		Other:    strings.Join(parts[secOther], "\n"),
	}
}
