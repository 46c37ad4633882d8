package util

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeAtomic streams into a temp file next to path and renames it over path
// once fn succeeds. Readers never see a partial file.
func writeAtomic(path, pattern string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", filepath.Base(path), err)
	}
	w := bufio.NewWriter(tmp)
	if err := fn(w); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteJSONAtomic writes v as indented JSON.
func WriteJSONAtomic(path string, v any) error {
	return writeAtomic(path, "tmp-*.json", func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	})
}

// WriteJSONLinesAtomic writes one compact JSON object per row.
func WriteJSONLinesAtomic[T any](path string, rows []T) error {
	return writeAtomic(path, "tmp-*.jsonl", func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for i, row := range rows {
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("encode row %d: %w", i, err)
			}
		}
		return nil
	})
}

func WriteTextAtomic(path, content string) error {
	return writeAtomic(path, "tmp-*.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
}
