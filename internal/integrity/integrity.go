// Package integrity seals documents with SHA-256 checksums and re-verifies them.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"juriscope/internal/events"
	"juriscope/internal/logging"
	"juriscope/internal/metrics"
	"juriscope/internal/models"
	"juriscope/internal/storage"
	"juriscope/internal/util"
)

// BlobReader loads the original binary referenced by Document.DocumentPath.
type BlobReader interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Seal records checksums for the parts of d that exist. A nil file keeps the
// stored file checksum. The document is VERIFIED only when the file was hashed
// now and all three checksums are present.
func Seal(d *models.Document, file []byte, now time.Time) {
	d.ContentChecksum = checksumText(d.Content)
	d.FullTextChecksum = checksumText(d.FullTextContent)
	if file != nil {
		d.FileChecksum = util.SHA256Hex(file)
	}
	if file != nil && d.ContentChecksum != "" && d.FullTextChecksum != "" {
		d.IntegrityStatus = models.IntegrityVerified
		d.IntegrityVerifiedAt = &now
		return
	}
	d.IntegrityStatus = models.IntegrityUnverified
	d.IntegrityVerifiedAt = nil
}

func checksumText(s string) string {
	if s == "" {
		return ""
	}
	return util.SHA256Hex([]byte(s))
}

type Report struct {
	DocumentID string                 `json:"document_id"`
	Status     models.IntegrityStatus `json:"status"`
	Mismatched []string               `json:"mismatched,omitempty"`
	CheckedAt  time.Time              `json:"checked_at"`
}

type Verifier struct {
	store   storage.Store
	blobs   BlobReader
	bus     events.Bus
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *slog.Logger
}

func NewVerifier(store storage.Store, blobs BlobReader, logger *slog.Logger) *Verifier {
	return &Verifier{
		store:  store,
		blobs:  blobs,
		now:    func() time.Time { return time.Now().UTC() },
		bus:    events.Nop{},
		logger: logging.OrDefault(logger),
	}
}

// Notify reports verification outcomes to bus and m.
func (v *Verifier) Notify(bus events.Bus, m *metrics.Metrics) *Verifier {
	if bus != nil {
		v.bus = bus
	}
	v.metrics = m
	return v
}

// Verify recomputes the checksums of a document and compares them with the
// stored ones. A mismatch marks the document CORRUPTED and returns
// util.ErrIntegrityMismatch alongside the report.
func (v *Verifier) Verify(ctx context.Context, id string) (Report, error) {
	var file []byte
	pre, err := v.store.GetDocument(ctx, id)
	if err != nil {
		return Report{}, fmt.Errorf("verify document: %w", err)
	}
	if pre.DocumentPath != "" && v.blobs != nil {
		file, err = v.blobs.Get(ctx, pre.DocumentPath)
		if err != nil {
			return Report{}, fmt.Errorf("verify document %s: load original: %w", id, err)
		}
	}

	var rep Report
	err = v.store.WithTx(ctx, func(r storage.Repo) error {
		d, err := r.GetDocument(ctx, id)
		if err != nil {
			return err
		}
		now := v.now()
		rep = Report{DocumentID: id, CheckedAt: now}
		rep.Mismatched = mismatches(d, file)

		if len(rep.Mismatched) > 0 {
			d.IntegrityStatus = models.IntegrityCorrupted
			d.IntegrityVerifiedAt = &now
		} else {
			Seal(&d, file, now)
		}
		rep.Status = d.IntegrityStatus
		return r.UpdateDocument(ctx, d)
	})
	if err != nil {
		return Report{}, fmt.Errorf("verify document %s: %w", id, err)
	}
	v.metrics.Integrity(string(rep.Status))
	if rep.Status == models.IntegrityCorrupted {
		v.logger.Warn("integrity mismatch", "document_id", id, "fields", rep.Mismatched)
		v.bus.Publish(ctx, events.New(events.IntegrityCorrupted, "document", id, map[string]any{"fields": rep.Mismatched}))
		return rep, fmt.Errorf("verify document %s: %v: %w", id, rep.Mismatched, util.ErrIntegrityMismatch)
	}
	return rep, nil
}

// mismatches compares stored checksums with recomputed ones. Missing stored
// checksums are not mismatches.
func mismatches(d models.Document, file []byte) []string {
	var out []string
	if d.ContentChecksum != "" && d.ContentChecksum != checksumText(d.Content) {
		out = append(out, "content")
	}
	if d.FullTextChecksum != "" && d.FullTextChecksum != checksumText(d.FullTextContent) {
		out = append(out, "full_text_content")
	}
	if file != nil && d.FileChecksum != "" && d.FileChecksum != util.SHA256Hex(file) {
		out = append(out, "file")
	}
	return out
}

// IsMismatch reports whether err came from a failed verification.
func IsMismatch(err error) bool {
	return errors.Is(err, util.ErrIntegrityMismatch)
}
