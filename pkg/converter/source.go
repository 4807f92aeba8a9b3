package converter

import (
	"context"
	"fmt"
	"os"
)

// Source is one script to convert.
type Source struct {
	Path string
	Text string
}

// SourceReader loads the script text for a path.
type SourceReader interface {
	ReadSource(ctx context.Context, path string) (string, error)
}

// FileSource reads scripts from the local filesystem.
type FileSource struct{}

func (FileSource) ReadSource(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file %q: %w", path, err)
	}
	return string(data), nil
}
