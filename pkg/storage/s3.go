package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Storage writes step files as objects in one bucket.
type S3Storage struct {
	client *s3.Client
	bucket string
}

// NewS3Storage uses the default AWS credential chain. An empty region defers
// to AWS_REGION and the shared config files.
func NewS3Storage(ctx context.Context, bucket, region string, optFns ...func(*s3.Options)) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name cannot be empty")
	}

	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &S3Storage{
		client: s3.NewFromConfig(cfg, optFns...),
		bucket: bucket,
	}, nil
}

func (s *S3Storage) Write(ctx context.Context, key string, data []byte) error {
	cleanKey, err := cleanS3Key(key)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(cleanKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		if isS3BucketNotFound(err) {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, s.bucket)
		}
		return fmt.Errorf("uploading s3://%s/%s: %w", s.bucket, cleanKey, err)
	}

	return nil
}

func (s *S3Storage) Location(key string) string {
	cleanKey, err := cleanS3Key(key)
	if err != nil {
		cleanKey = key
	}
	return s3Scheme + s.bucket + "/" + cleanKey
}

// cleanS3Key rejects keys that would resolve outside the bucket root.
func cleanS3Key(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: key cannot be empty", ErrInvalidPath)
	}
	cleaned := path.Clean("/" + key)
	if cleaned != "/"+strings.TrimPrefix(key, "/") || cleaned == "/" {
		return "", fmt.Errorf("%w: key %q is not canonical", ErrInvalidPath, key)
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}

func isS3BucketNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchBucket"
	}
	return false
}
