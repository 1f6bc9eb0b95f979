package fs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/lander/internal/core/domain"
	"go.trai.ch/lander/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileWriter = (*Writer)(nil)

// Writer writes output files, skipping writes whose bytes are unchanged so
// that untouched outputs keep their modification times.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteFile writes data to path and reports whether the file changed.
func (w *Writer) WriteFile(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	switch {
	case err == nil && bytes.Equal(existing, data):
		return false, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return false, zerr.With(zerr.Wrap(err, domain.ErrOutputWriteFailed.Error()), "path", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrOutputWriteFailed.Error()), "path", path)
	}
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrOutputWriteFailed.Error()), "path", path)
	}
	return true, nil
}
