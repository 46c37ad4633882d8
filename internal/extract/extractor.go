// Package extract produces analyzable text for a document, walking from the
// stored full text to the stored summary to the remote source.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"juriscope/internal/logging"
	"juriscope/internal/models"
	"juriscope/internal/util"
)

type Source string

const (
	SourceFullText   Source = "full_text"
	SourceContent    Source = "content"
	SourceDocx       Source = "remote_docx"
	SourcePDF        Source = "remote_pdf"
	SourceRTF        Source = "remote_rtf"
	SourceHTML       Source = "remote_html"
	SourceRemoteText Source = "remote_text"
)

// DefaultMinLength is the minimum rune count of text worth analyzing.
const DefaultMinLength = 100

type Result struct {
	Text      string   `json:"text"`
	Source    Source   `json:"source"`
	Sections  Sections `json:"sections,omitempty"`
	WordCount int      `json:"word_count,omitempty"`
	// FetchedPayload is the raw remote body when the text came from the network.
	FetchedPayload []byte `json:"-"`
}

// Fetched reports whether the caller should persist Text as the document's new full text.
func (r Result) Fetched() bool {
	return r.Source != SourceFullText && r.Source != SourceContent
}

// Fetcher downloads a remote document body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Extractor struct {
	fetcher    Fetcher
	structured StructuredExtractor
	minLen     int
	logger     *slog.Logger
}

type Option func(*Extractor)

func WithMinLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minLen = n
		}
	}
}

func WithStructuredExtractor(s StructuredExtractor) Option {
	return func(e *Extractor) { e.structured = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New builds an Extractor. A nil fetcher disables the remote step.
func New(fetcher Fetcher, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher:    fetcher,
		structured: DocxExtractor{},
		minLen:     DefaultMinLength,
	}
	for _, o := range opts {
		o(e)
	}
	e.logger = logging.OrDefault(e.logger)
	return e
}

// Extract returns the first source yielding at least the minimum length of
// sanitized text, or util.ErrInsufficientContent.
func (e *Extractor) Extract(ctx context.Context, doc models.Document) (Result, error) {
	if text := util.SanitizeText(doc.FullTextContent); e.enough(text) {
		return Result{Text: text, Source: SourceFullText}, nil
	}
	if text := util.SanitizeText(doc.Content); e.enough(text) {
		return Result{Text: text, Source: SourceContent}, nil
	}
	if e.fetcher == nil || doc.URL == "" {
		return Result{}, fmt.Errorf("extract document %s: %w", doc.ID, util.ErrInsufficientContent)
	}

	payload, err := e.fetcher.Fetch(ctx, doc.URL)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		e.logger.Warn("remote fetch failed", "document_id", doc.ID, "url", doc.URL, "error", err)
		return Result{}, fmt.Errorf("extract document %s: fetch failed: %w", doc.ID, util.ErrInsufficientContent)
	}

	res, err := e.decode(payload, doc.Title)
	if err != nil {
		e.logger.Warn("remote payload not decodable", "document_id", doc.ID, "error", err)
		return Result{}, fmt.Errorf("extract document %s: %w", doc.ID, util.ErrInsufficientContent)
	}
	res.Text = util.SanitizeText(res.Text)
	if !e.enough(res.Text) {
		return Result{}, fmt.Errorf("extract document %s: remote text too short: %w", doc.ID, util.ErrInsufficientContent)
	}
	res.FetchedPayload = payload
	return res, nil
}

func (e *Extractor) decode(payload []byte, title string) (Result, error) {
	switch DetectKind(payload) {
	case KindDocx:
		s, err := e.structured.ExtractFromBinary(payload, title)
		if err != nil {
			return Result{}, err
		}
		if s == nil {
			return Result{}, errors.New("docx without extractable text")
		}
		return Result{Text: s.FullText, Source: SourceDocx, Sections: s.Sections, WordCount: s.WordCount}, nil
	case KindPDF:
		text, err := PDFText(payload)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, Source: SourcePDF}, nil
	case KindRTF:
		return Result{Text: RTFText(payload), Source: SourceRTF}, nil
	case KindHTML:
		text, err := HTMLText(payload)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, Source: SourceHTML}, nil
	default:
		return Result{Text: DecodeText(payload), Source: SourceRemoteText}, nil
	}
}

func (e *Extractor) enough(text string) bool {
	return util.RuneLen(text) >= e.minLen
}

// FromPayload decodes an already downloaded binary. It returns
// util.ErrInsufficientContent when the payload yields too little text.
func (e *Extractor) FromPayload(payload []byte, title string) (Result, error) {
	res, err := e.decode(payload, title)
	if err != nil {
		return Result{}, fmt.Errorf("decode payload: %w: %w", util.ErrInsufficientContent, err)
	}
	res.Text = util.SanitizeText(res.Text)
	if !e.enough(res.Text) {
		return Result{}, fmt.Errorf("decode payload: text too short: %w", util.ErrInsufficientContent)
	}
	res.FetchedPayload = payload
	return res, nil
}
