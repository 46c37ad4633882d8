package blob

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"juriscope/internal/config"
)

func TestLocalPutGetDelete(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	path, err := l.Put(ctx, "T 123 23.DOCX", []byte("PK\x03\x04data"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_T_123_23.docx"), path)

	b, err := l.Get(ctx, path)
	require.NoError(t, err)
	require.Equal(t, []byte("PK\x03\x04data"), b)

	require.NoError(t, l.Delete(ctx, path))
	_, err = l.Get(ctx, path)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, l.Delete(ctx, path))
}

func TestLocalRejectsEscapingPaths(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	_, err = l.Get(context.Background(), "../../etc/passwd")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Defaults()
	cfg.BlobLocalPath = t.TempDir()
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.IsType(t, &Local{}, s)

	cfg.BlobType = TypeS3
	_, err = New(context.Background(), cfg)
	require.Error(t, err)

	cfg.BlobType = "ftp"
	_, err = New(context.Background(), cfg)
	require.Error(t, err)
}

func TestContentType(t *testing.T) {
	require.Equal(t, "application/rtf", contentType("t-1-23.rtf"))
	require.Equal(t, "application/octet-stream", contentType("blob"))
}
