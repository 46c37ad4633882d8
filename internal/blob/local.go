package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"juriscope/internal/util"
)

type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := util.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Put(ctx context.Context, filename string, data []byte) (string, error) {
	path := objectPath(uuid.New(), filename)
	full := filepath.Join(l.root, path)
	if err := util.EnsureDir(filepath.Dir(full)); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), "tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("rename blob: %w", err)
	}
	return path, nil
}

func (l *Local) Get(ctx context.Context, path string) ([]byte, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read blob %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", path, err)
	}
	return b, nil
}

func (l *Local) Delete(ctx context.Context, path string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", path, err)
	}
	return nil
}

func (l *Local) resolve(path string) (string, error) {
	full := filepath.Join(l.root, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, filepath.Clean(l.root)+string(filepath.Separator)) {
		return "", fmt.Errorf("blob path %q escapes root", path)
	}
	return full, nil
}
