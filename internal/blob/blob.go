// Package blob keeps the original downloaded ruling binaries.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"juriscope/internal/config"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	// Put stores data and returns the path to read it back with.
	Put(ctx context.Context, filename string, data []byte) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// New picks the backend named by cfg.BlobType.
func New(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.BlobType {
	case TypeLocal, "":
		return NewLocal(cfg.BlobLocalPath)
	case TypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET is required for s3 blob storage")
		}
		return NewS3(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown blob type: %s", cfg.BlobType)
	}
}

// objectPath spreads objects over 256 prefixes and keeps a readable name.
func objectPath(id uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	base = strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(base)
	s := id.String()
	return fmt.Sprintf("%s/%s_%s%s", s[:2], s, base, strings.ToLower(ext))
}

func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".rtf":
		return "application/rtf"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".htm", ".html":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
