package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/y0ug/defacemon/internal/database/models"
)

// FileDB stores the baseline as a single JSON document on disk.
type FileDB struct {
	path string
}

// NewFileDB returns a FileDB backed by the document at path.
func NewFileDB(path string) *FileDB {
	return &FileDB{path: path}
}

// Path returns the location of the baseline document.
func (f *FileDB) Path() string {
	return f.path
}

// Initialize creates the data directory if needed.
func (f *FileDB) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (f *FileDB) Close(context.Context) error {
	return nil
}

// SaveBaseline writes the record to a temp file and renames it over the old
// one, so a reader never observes a partial document.
func (f *FileDB) SaveBaseline(ctx context.Context, b models.Baseline) error {
	data, err := encodeBaseline(b)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".baseline-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write baseline: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write baseline: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set baseline permissions: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace baseline: %w", err)
	}
	return nil
}

// LoadBaseline reads and decodes the stored record.
func (f *FileDB) LoadBaseline(ctx context.Context) (models.Baseline, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Baseline{}, ErrBaselineNotFound
		}
		return models.Baseline{}, fmt.Errorf("failed to read baseline: %w", err)
	}
	return decodeBaseline(data)
}

// BaselineExists reports whether the document is present.
func (f *FileDB) BaselineExists(ctx context.Context) (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// DeleteBaseline removes the document.
func (f *FileDB) DeleteBaseline(ctx context.Context) (bool, error) {
	err := os.Remove(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete baseline: %w", err)
	}
	return true, nil
}
