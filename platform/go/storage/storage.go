package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// Object is a blob ready to be written.
type Object struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectLocation describes where a blob should live.
type ObjectLocation struct {
	Bucket   string
	FullPath string
}

// ResolveObjectLocation validates a bucket/key pair and returns the normalized location.
//   - bucket must come from deployment configuration (one bucket per environment class).
//   - logicalKey is relative, such as "properties/<property_uuid>/1718000000000-0.jpg".
func ResolveObjectLocation(bucket string, logicalKey string) (ObjectLocation, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return ObjectLocation{}, fmt.Errorf("bucket is required")
	}
	key := strings.TrimSpace(logicalKey)
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return ObjectLocation{}, fmt.Errorf("logical key is required")
	}

	cleaned := path.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return ObjectLocation{}, fmt.Errorf("logical key %q escapes the bucket", logicalKey)
	}

	return ObjectLocation{Bucket: bucket, FullPath: cleaned}, nil
}

// PublicURLs maps object locations to the URLs stored on records and back.
// BaseURL is the public root under which "<bucket>/<path>" is reachable.
type PublicURLs struct {
	BaseURL string
}

// GCSPublicBaseURL is the default public root for Cloud Storage objects.
const GCSPublicBaseURL = "https://storage.googleapis.com"

// URL returns the public URL of an object.
func (p PublicURLs) URL(loc ObjectLocation) string {
	base := strings.TrimSuffix(p.BaseURL, "/")
	segments := strings.Split(loc.FullPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return base + "/" + url.PathEscape(loc.Bucket) + "/" + strings.Join(segments, "/")
}

// Path extracts the object path from a public URL of bucket. ok is false for
// URLs that point elsewhere, such as images hosted by a third party.
func (p PublicURLs) Path(bucket, rawURL string) (string, bool) {
	prefix := strings.TrimSuffix(p.BaseURL, "/") + "/" + url.PathEscape(bucket) + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}

	escaped := strings.TrimPrefix(rawURL, prefix)
	if i := strings.IndexAny(escaped, "?#"); i >= 0 {
		escaped = escaped[:i]
	}
	objectPath, err := url.PathUnescape(escaped)
	if err != nil || objectPath == "" {
		return "", false
	}
	return objectPath, true
}

// Checker verifies that a bucket prefix is reachable; used by readiness probes.
type Checker interface {
	Check(ctx context.Context, bucket, prefix string) error
}
