package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes step files under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates the base directory when it does not exist yet.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	baseDir = filepath.Clean(baseDir)
	if baseDir == "" || baseDir == "." {
		return nil, fmt.Errorf("%w: base directory cannot be empty", ErrInvalidPath)
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %q: %w", baseDir, err)
	}

	return &LocalStorage{baseDir: baseDir}, nil
}

// Write replaces the file at path. Data goes to a temporary sibling first so
// a failed write never leaves a truncated steps file behind.
func (s *LocalStorage) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.validateAndJoinPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %q: %w", fullPath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %q: %w", fullPath, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %q: %w", fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %q: %w", fullPath, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %q: %w", fullPath, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %q: %w", fullPath, err)
	}

	return nil
}

func (s *LocalStorage) Location(path string) string {
	fullPath, err := s.validateAndJoinPath(path)
	if err != nil {
		return path
	}
	return fullPath
}

// validateAndJoinPath keeps the final path inside baseDir.
func (s *LocalStorage) validateAndJoinPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}

	fullPath := filepath.Join(s.baseDir, filepath.Clean(path))

	relPath, err := filepath.Rel(s.baseDir, fullPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes %q", ErrInvalidPath, path, s.baseDir)
	}

	return fullPath, nil
}
