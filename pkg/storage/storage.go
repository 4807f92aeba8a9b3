package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath is returned when a path is empty or escapes the storage root.
	ErrInvalidPath = errors.New("invalid path")

	// ErrBucketNotFound is returned when the target S3 bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)

const s3Scheme = "s3://"

// Writer persists converted step files.
type Writer interface {
	// Write stores data at path, replacing any previous content.
	Write(ctx context.Context, path string, data []byte) error

	// Location describes where path ends up, for log messages.
	Location(path string) string
}

// Open returns the Writer serving target together with the key to pass to
// Write. Targets of the form s3://bucket/key go to S3; anything else is a
// local file path rooted at its parent directory.
func Open(ctx context.Context, target, region string) (Writer, string, error) {
	if strings.HasPrefix(target, s3Scheme) {
		bucket, key, err := ParseS3URI(target)
		if err != nil {
			return nil, "", err
		}
		s3Storage, err := NewS3Storage(ctx, bucket, region)
		if err != nil {
			return nil, "", fmt.Errorf("initializing S3 storage: %w", err)
		}
		return s3Storage, key, nil
	}

	if target == "" {
		return nil, "", fmt.Errorf("%w: output path cannot be empty", ErrInvalidPath)
	}
	absPath, err := filepath.Abs(target)
	if err != nil {
		return nil, "", fmt.Errorf("resolving output path %q: %w", target, err)
	}
	local, err := NewLocalStorage(filepath.Dir(absPath))
	if err != nil {
		return nil, "", err
	}
	return local, filepath.Base(absPath), nil
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %q must look like s3://bucket/key", ErrInvalidPath, uri)
	}
	return bucket, key, nil
}
