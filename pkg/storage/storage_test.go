package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/arnavsurve/virtuoso-converter/pkg/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage(t *testing.T) {
	tests := []struct {
		name    string
		baseDir string
		wantErr bool
	}{
		{"existing directory", t.TempDir(), false},
		{"creates missing directory", filepath.Join(t.TempDir(), "out", "steps"), false},
		{"empty", "", true},
		{"dot", ".", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := storage.NewLocalStorage(tt.baseDir)
			if tt.wantErr {
				assert.ErrorIs(t, err, storage.ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
			assert.DirExists(t, tt.baseDir)
		})
	}
}

func TestLocalStorage_Write(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "virtuoso_steps.json", []byte("[]")))
	require.NoError(t, s.Write(ctx, "virtuoso_steps.json", []byte("[\n  1\n]")))

	got, err := os.ReadFile(filepath.Join(dir, "virtuoso_steps.json"))
	require.NoError(t, err)
	assert.Equal(t, "[\n  1\n]", string(got))

	require.NoError(t, s.Write(ctx, "nested/deeper/steps.json", []byte("[]")))
	assert.FileExists(t, filepath.Join(dir, "nested", "deeper", "steps.json"))
	assert.Equal(t, filepath.Join(dir, "nested", "deeper", "steps.json"), s.Location("nested/deeper/steps.json"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".virtuoso_steps.json.", "temp file left behind")
	}
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"", "../escape.json", "a/../../escape.json"} {
		err := s.Write(context.Background(), p, []byte("[]"))
		assert.ErrorIs(t, err, storage.ErrInvalidPath, "path %q", p)
	}
}

func TestLocalStorage_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Write(ctx, "steps.json", []byte("[]")), context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "steps.json"))
}

func TestOpen_Local(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "Test_Login_virtuoso_steps.json")

	w, key, err := storage.Open(context.Background(), target, "")
	require.NoError(t, err)
	assert.Equal(t, "Test_Login_virtuoso_steps.json", key)
	assert.Equal(t, target, w.Location(key))

	require.NoError(t, w.Write(context.Background(), key, []byte("[]")))
	assert.FileExists(t, target)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := storage.ParseS3URI("s3://qa-artifacts/steps/login.json")
	require.NoError(t, err)
	assert.Equal(t, "qa-artifacts", bucket)
	assert.Equal(t, "steps/login.json", key)

	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/", "s3:///key", "s3://bucket/dir/"} {
		_, _, err := storage.ParseS3URI(bad)
		assert.ErrorIs(t, err, storage.ErrInvalidPath, bad)
	}
}

func newTestS3(t *testing.T, handler http.HandlerFunc) *storage.S3Storage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := storage.NewS3Storage(context.Background(), "qa-artifacts", "us-east-1", func(o *s3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
		o.Credentials = aws.AnonymousCredentials{}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	require.NoError(t, err)
	return s
}

func TestS3Storage_Write(t *testing.T) {
	var gotPath, gotBody, gotType string
	s := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, s.Write(context.Background(), "steps/login.json", []byte(`[{"a":1}]`)))
	assert.Equal(t, "/qa-artifacts/steps/login.json", gotPath)
	assert.Equal(t, `[{"a":1}]`, gotBody)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "s3://qa-artifacts/steps/login.json", s.Location("steps/login.json"))
}

func TestS3Storage_MissingBucket(t *testing.T) {
	s := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist</Message></Error>`))
	})

	err := s.Write(context.Background(), "steps/login.json", []byte("[]"))
	assert.ErrorIs(t, err, storage.ErrBucketNotFound)
}

func TestS3Storage_RejectsBadKeys(t *testing.T) {
	s := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	for _, key := range []string{"", "../escape.json", "a//b.json"} {
		assert.ErrorIs(t, s.Write(context.Background(), key, []byte("[]")), storage.ErrInvalidPath, key)
	}

	_, err := storage.NewS3Storage(context.Background(), "", "us-east-1")
	require.Error(t, err)
}
