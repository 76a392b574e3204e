package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store places artifacts on local disk.
type Store struct {
	// Dir receives files whose name is derived from the title.
	// Default: current directory.
	Dir string
}

// Target resolves where an artifact goes. A non-empty output is used as
// is, unless it names a directory, in which case the derived filename is
// placed inside it.
func (s Store) Target(output, title, ext string) string {
	name := Filename(title, ext)
	if output == "" {
		dir := s.Dir
		if dir == "" {
			dir = "."
		}
		return filepath.Join(dir, name)
	}
	if strings.HasSuffix(output, string(os.PathSeparator)) || strings.HasSuffix(output, "/") {
		return filepath.Join(output, name)
	}
	if fi, err := os.Stat(output); err == nil && fi.IsDir() {
		return filepath.Join(output, name)
	}
	return output
}

// Write stores data at path through a temp file and a rename, so readers
// see either the previous file or the complete new one. An existing file
// is replaced.
func (s Store) Write(path string, data []byte) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("extract: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".docfetch-*.part")
	if err != nil {
		return 0, fmt.Errorf("extract: temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return 0, fmt.Errorf("extract: write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return 0, fmt.Errorf("extract: sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, fmt.Errorf("extract: close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return 0, fmt.Errorf("extract: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return 0, fmt.Errorf("extract: rename %s: %w", path, err)
	}
	return int64(len(data)), nil
}
