package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin places name directly under root. Separators and dot names are
// neutralized so the result never leaves root; an empty name becomes "_".
func SafeJoin(root, name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	return filepath.Join(root, name)
}
