// Package docwriter writes documentation artifacts to the docs root with the
// same crash-safety the Checkpoint Store uses: write to a temp file in the
// same directory, flush, then rename into place.
package docwriter

import (
	"os"
	"path/filepath"
)

// WriteAtomic writes data to docsRoot/relPath, creating parent directories
// as needed, via temp-file-then-rename.
func WriteAtomic(docsRoot, relPath string, data []byte) error {
	full := filepath.Join(docsRoot, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".artifact-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, full)
}

// VerifyNonEmpty stats docsRoot/relPath and returns an error if it is
// missing or zero-length — the write-verification step every artifact write
// in the pipeline performs before trusting its own output.
func VerifyNonEmpty(docsRoot, relPath string) error {
	full := filepath.Join(docsRoot, filepath.FromSlash(relPath))
	info, err := os.Stat(full)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return &ZeroLengthError{Path: relPath}
	}
	return nil
}

// ZeroLengthError reports that an artifact was written but is empty.
type ZeroLengthError struct{ Path string }

func (e *ZeroLengthError) Error() string {
	return "docwriter: artifact is zero-length: " + e.Path
}
