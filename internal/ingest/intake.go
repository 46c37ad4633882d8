package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"juriscope/internal/events"
	"juriscope/internal/extract"
	"juriscope/internal/integrity"
	"juriscope/internal/models"
	"juriscope/internal/util"
)

// MinBinaryBytes is the smallest downloaded binary kept at intake.
const MinBinaryBytes = 100

var ErrInvalidDocument = errors.New("invalid scraped document")

// ScrapedDocument is one ruling as handed over by the scraper.
type ScrapedDocument struct {
	ExternalID  string     `json:"external_id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Court       string     `json:"court,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Content     string     `json:"content,omitempty"`
	FullText    string     `json:"full_text,omitempty"`
	// DocumentURL points at the original binary (docx, rtf, pdf).
	DocumentURL string `json:"document_url,omitempty"`
}

func (s ScrapedDocument) validate() error {
	var missing []string
	if strings.TrimSpace(s.ExternalID) == "" {
		missing = append(missing, "external_id")
	}
	if strings.TrimSpace(s.URL) == "" {
		missing = append(missing, "url")
	}
	if strings.TrimSpace(s.Title) == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidDocument, strings.Join(missing, ", "))
	}
	return nil
}

// Intake stores a scraped ruling as a PENDING document. Known documents
// return util.ErrDuplicateDocument and are not an error for callers looping
// over a scrape.
func (p *Processor) Intake(ctx context.Context, s ScrapedDocument) (models.Document, error) {
	if err := s.validate(); err != nil {
		return models.Document{}, err
	}
	if existing, found, err := p.store.FindDuplicate(ctx, s.URL, s.ExternalID, s.Title); err != nil {
		return models.Document{}, fmt.Errorf("check duplicate %s: %w", s.ExternalID, err)
	} else if found {
		p.metrics.Ingested("duplicate")
		return existing, fmt.Errorf("intake %s: %w", s.ExternalID, util.ErrDuplicateDocument)
	}

	d := models.Document{
		ExternalID:      strings.TrimSpace(s.ExternalID),
		URL:             strings.TrimSpace(s.URL),
		Title:           strings.TrimSpace(s.Title),
		Court:           s.Court,
		PublishedAt:     s.PublishedAt,
		Content:         util.TruncateRunes(util.SanitizeText(s.Content), models.MaxContentRunes),
		FullTextContent: util.SanitizeText(s.FullText),
		Status:          models.DocumentPending,
		AnalysisStatus:  models.AnalysisPending,
	}
	d.SentenceType = models.SentenceTypeFromID(d.ExternalID)

	var file []byte
	if s.DocumentURL != "" {
		payload, kind, ok := p.download(ctx, s.DocumentURL)
		if ok {
			path, err := p.blobs.Put(ctx, blobName(d, kind), payload)
			if err != nil {
				return models.Document{}, fmt.Errorf("store binary for %s: %w", d.ExternalID, err)
			}
			d.DocumentPath = path
			file = payload
			if d.FullTextContent == "" {
				if res, err := p.extractor.FromPayload(payload, d.Title); err == nil {
					d.FullTextContent = res.Text
					p.metrics.Extracted(string(res.Source))
				}
			}
		}
	}
	integrity.Seal(&d, file, p.now().UTC())

	if err := p.store.CreateDocument(ctx, &d); err != nil {
		p.metrics.Ingested("error")
		return models.Document{}, fmt.Errorf("create document %s: %w", d.ExternalID, err)
	}
	p.metrics.Ingested("created")
	p.logger.Info("document ingested", "document_id", d.ID, "external_id", d.ExternalID, "binary", d.DocumentPath != "")
	p.bus.Publish(ctx, events.New(events.DocumentIngested, "document", d.ID, map[string]any{
		"external_id": d.ExternalID, "integrity": string(d.IntegrityStatus),
	}))
	return d, nil
}

// download fetches the original binary. Unreachable, HTML or tiny payloads are
// skipped with a warning; the document is still ingested without them.
func (p *Processor) download(ctx context.Context, url string) ([]byte, extract.Kind, bool) {
	if p.fetcher == nil || p.blobs == nil {
		return nil, "", false
	}
	if p.verifier != nil && !p.verifier.Verify(ctx, url) {
		p.logger.Warn("document url not reachable", "url", url)
		return nil, "", false
	}
	payload, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		p.logger.Warn("download original failed", "url", url, "error", err)
		return nil, "", false
	}
	if extract.LooksHTML(payload) {
		p.logger.Warn("download returned an html page", "url", url)
		return nil, "", false
	}
	if len(payload) < MinBinaryBytes {
		p.logger.Warn("downloaded file too small", "url", url, "bytes", len(payload))
		return nil, "", false
	}
	return payload, extract.DetectKind(payload), true
}

func blobName(d models.Document, kind extract.Kind) string {
	base := util.Slugify(d.ExternalID)
	switch kind {
	case extract.KindDocx, extract.KindPDF, extract.KindRTF:
		return base + "." + string(kind)
	default:
		return base + ".bin"
	}
}
