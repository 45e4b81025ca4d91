package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "stage-tmp-"
)

// writeTemp writes data to a synced temp file next to filename and returns
// its path. The caller removes it.
func writeTemp(filename string, data []byte, perm os.FileMode) (string, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return name, fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return name, fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return name, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		return name, fmt.Errorf("failed to chmod temp file: %w", err)
	}
	return name, nil
}

// writeFileAtomic writes data to a temp file and renames it over filename,
// so readers never observe a partial write.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := writeTemp(filename, data, perm)
	if tmp != "" {
		defer os.Remove(tmp) // no-op once renamed
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmp, filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}

// createFileExclusive is writeFileAtomic that fails with os.ErrExist when
// filename is already present. The temp file is hard-linked into place, so
// the existence check and the write are a single step.
func createFileExclusive(filename string, data []byte, perm os.FileMode) error {
	tmp, err := writeTemp(filename, data, perm)
	if tmp != "" {
		defer os.Remove(tmp)
	}
	if err != nil {
		return err
	}

	if err := os.Link(tmp, filename); err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	return nil
}
