package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalBlobStore keeps blobs under BasePath/<bucket>/<path> for local development.
type LocalBlobStore struct {
	BasePath string
	urls     PublicURLs
}

// NewLocalBlobStore builds a store whose URLs are rooted at publicBaseURL
// (for example http://localhost:3000/media, served by the API).
func NewLocalBlobStore(basePath, publicBaseURL string) *LocalBlobStore {
	if basePath == "" {
		panic("local blob store requires basePath")
	}
	if publicBaseURL == "" {
		panic("local blob store requires publicBaseURL")
	}
	return &LocalBlobStore{BasePath: basePath, urls: PublicURLs{BaseURL: publicBaseURL}}
}

func (s *LocalBlobStore) filePath(loc ObjectLocation) string {
	return filepath.Join(s.BasePath, loc.Bucket, filepath.FromSlash(loc.FullPath))
}

// Upload writes obj to disk and returns its public URL.
func (s *LocalBlobStore) Upload(ctx context.Context, bucket, objectPath string, obj Object) (string, error) {
	loc, err := ResolveObjectLocation(bucket, objectPath)
	if err != nil {
		return "", err
	}
	if obj.Body == nil {
		return "", fmt.Errorf("upload %s: body is required", loc.FullPath)
	}

	target := s.filePath(loc)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create object %s: %w", loc.FullPath, err)
	}
	if _, err := io.Copy(f, obj.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write object %s: %w", loc.FullPath, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", loc.FullPath, err)
	}

	return s.urls.URL(loc), nil
}

// Remove deletes every path; missing files count as removed.
func (s *LocalBlobStore) Remove(ctx context.Context, bucket string, paths []string) error {
	var errs []error
	for _, p := range paths {
		loc, err := ResolveObjectLocation(bucket, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(s.filePath(loc)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("delete object %s: %w", loc.FullPath, err))
		}
	}
	return errors.Join(errs...)
}

// ObjectPath maps a public URL back to its object path inside bucket.
func (s *LocalBlobStore) ObjectPath(bucket, rawURL string) (string, bool) {
	return s.urls.Path(bucket, rawURL)
}

// Check creates BasePath/<bucket>/<prefix> if needed.
func (s *LocalBlobStore) Check(ctx context.Context, bucket, prefix string) error {
	if bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if err := os.MkdirAll(filepath.Join(s.BasePath, bucket, filepath.FromSlash(prefix)), 0o755); err != nil {
		return fmt.Errorf("create prefix path: %w", err)
	}
	return nil
}

var _ Checker = (*LocalBlobStore)(nil)
