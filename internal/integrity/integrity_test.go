package integrity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"juriscope/internal/models"
	"juriscope/internal/storage"
	"juriscope/internal/util"
)

type mapBlobs map[string][]byte

func (m mapBlobs) Get(ctx context.Context, path string) ([]byte, error) {
	b, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", path, util.ErrNotFound)
	}
	return b, nil
}

func sealedDocument(t *testing.T, st storage.Store, blobs mapBlobs) models.Document {
	t.Helper()
	file := []byte("PK\x03\x04 original ruling")
	blobs["ab/original.docx"] = file
	d := models.Document{
		ExternalID:      "T-200/23",
		URL:             "https://example.test/t-200-23.docx",
		Title:           "Sentencia T-200/23",
		Content:         "resumen de la sentencia",
		FullTextContent: "texto completo de la sentencia",
		DocumentPath:    "ab/original.docx",
	}
	Seal(&d, file, time.Now().UTC())
	require.Equal(t, models.IntegrityVerified, d.IntegrityStatus)
	require.NoError(t, st.CreateDocument(context.Background(), &d))
	return d
}

func TestSealRequiresAllThreeParts(t *testing.T) {
	d := models.Document{Content: "resumen"}
	Seal(&d, nil, time.Now())
	require.Equal(t, models.IntegrityUnverified, d.IntegrityStatus)
	require.Equal(t, util.SHA256Hex([]byte("resumen")), d.ContentChecksum)
	require.Empty(t, d.FullTextChecksum)
	require.Nil(t, d.IntegrityVerifiedAt)

	d.FullTextContent = "texto"
	Seal(&d, []byte("file"), time.Now())
	require.Equal(t, models.IntegrityVerified, d.IntegrityStatus)
	require.NotNil(t, d.IntegrityVerifiedAt)
}

func TestVerifyUntouchedDocument(t *testing.T) {
	st := storage.NewMemory()
	blobs := mapBlobs{}
	d := sealedDocument(t, st, blobs)

	rep, err := NewVerifier(st, blobs, nil).Verify(context.Background(), d.ID)
	require.NoError(t, err)
	require.Equal(t, models.IntegrityVerified, rep.Status)
	require.Empty(t, rep.Mismatched)
}

func TestVerifyDetectsTampering(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	blobs := mapBlobs{}
	d := sealedDocument(t, st, blobs)

	tampered, err := st.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	tampered.FullTextContent = "texto alterado"
	require.NoError(t, st.UpdateDocument(ctx, tampered))
	blobs["ab/original.docx"] = []byte("replaced")

	rep, err := NewVerifier(st, blobs, nil).Verify(ctx, d.ID)
	require.ErrorIs(t, err, util.ErrIntegrityMismatch)
	require.True(t, IsMismatch(err))
	require.Equal(t, models.IntegrityCorrupted, rep.Status)
	require.Equal(t, []string{"full_text_content", "file"}, rep.Mismatched)

	stored, err := st.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, models.IntegrityCorrupted, stored.IntegrityStatus)
	require.NotNil(t, stored.IntegrityVerifiedAt)
}

func TestVerifyWithoutBlobStaysUnverified(t *testing.T) {
	st := storage.NewMemory()
	d := sealedDocument(t, st, mapBlobs{})

	rep, err := NewVerifier(st, nil, nil).Verify(context.Background(), d.ID)
	require.NoError(t, err)
	require.Equal(t, models.IntegrityUnverified, rep.Status)
}

func TestVerifyMissingDocument(t *testing.T) {
	_, err := NewVerifier(storage.NewMemory(), nil, nil).Verify(context.Background(), "nope")
	require.ErrorIs(t, err, util.ErrNotFound)
}
