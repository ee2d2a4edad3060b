package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSBlobStore writes blobs to Cloud Storage.
type GCSBlobStore struct {
	client *storage.Client
	urls   PublicURLs
}

// NewGCSBlobStore builds a store; publicBaseURL defaults to GCSPublicBaseURL.
func NewGCSBlobStore(client *storage.Client, publicBaseURL string) *GCSBlobStore {
	if client == nil {
		panic("gcs blob store requires client")
	}
	if publicBaseURL == "" {
		publicBaseURL = GCSPublicBaseURL
	}
	return &GCSBlobStore{client: client, urls: PublicURLs{BaseURL: publicBaseURL}}
}

// Upload writes obj at bucket/objectPath and returns its public URL.
func (s *GCSBlobStore) Upload(ctx context.Context, bucket, objectPath string, obj Object) (string, error) {
	loc, err := ResolveObjectLocation(bucket, objectPath)
	if err != nil {
		return "", err
	}
	if obj.Body == nil {
		return "", fmt.Errorf("upload %s: body is required", loc.FullPath)
	}

	handle := s.client.Bucket(loc.Bucket).Object(loc.FullPath)
	err = streamObject(ctx, obj.Body, func(ctx context.Context) objectWriter {
		w := handle.NewWriter(ctx)
		w.ContentType = obj.ContentType
		w.CacheControl = "public, max-age=3600"
		return w
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", loc.FullPath, err)
	}

	return s.urls.URL(loc), nil
}

type objectWriter interface {
	io.Writer
	Close() error
}

// streamObject copies body into a writer opened on a cancelable context. A storage.Writer
// commits whatever it received on Close, so a failed copy cancels the context first to
// abort the upload instead of finalizing a partial object.
func streamObject(ctx context.Context, body io.Reader, open func(context.Context) objectWriter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := open(ctx)
	if _, err := io.Copy(w, body); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object: %w", err)
	}
	return nil
}

// Remove deletes every path; missing objects count as removed. All failures are returned joined.
func (s *GCSBlobStore) Remove(ctx context.Context, bucket string, paths []string) error {
	var errs []error
	for _, p := range paths {
		loc, err := ResolveObjectLocation(bucket, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		err = s.client.Bucket(loc.Bucket).Object(loc.FullPath).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			errs = append(errs, fmt.Errorf("delete object %s: %w", loc.FullPath, err))
		}
	}
	return errors.Join(errs...)
}

// ObjectPath maps a public URL back to its object path inside bucket.
func (s *GCSBlobStore) ObjectPath(bucket, rawURL string) (string, bool) {
	return s.urls.Path(bucket, rawURL)
}

// Check verifies access to the bucket and lists at most one object under prefix.
func (s *GCSBlobStore) Check(ctx context.Context, bucket, prefix string) error {
	bkt := s.client.Bucket(bucket)
	if _, err := bkt.Attrs(ctx); err != nil {
		return fmt.Errorf("bucket attrs: %w", err)
	}

	// an empty prefix is fine
	it := bkt.Objects(ctx, &storage.Query{Prefix: prefix})
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("list prefix: %w", err)
	}
	return nil
}

var _ Checker = (*GCSBlobStore)(nil)
