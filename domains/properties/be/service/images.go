package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/storage"
)

func (s *service) checkPhotos(photos []Photo) error {
	for i, p := range photos {
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(p.ContentType)), "image/") {
			return fmt.Errorf("%w: photo %d (%s) has type %q", ErrInvalidImage, i, p.Filename, p.ContentType)
		}
		if p.Size > s.cfg.MaxImageBytes {
			return fmt.Errorf("%w: photo %d (%s) is %d bytes, limit %d", ErrImageTooLarge, i, p.Filename, p.Size, s.cfg.MaxImageBytes)
		}
		if p.Body == nil {
			return fmt.Errorf("%w: photo %d (%s) is empty", ErrInvalidImage, i, p.Filename)
		}
	}
	return nil
}

// uploadPhotos stores photos one after another under properties/<id>/. On failure it
// returns the object paths written so far, including the failed one: a store may
// have committed bytes before reporting the error.
func (s *service) uploadPhotos(ctx context.Context, id uuid.UUID, photos []Photo) ([]string, []string, error) {
	urls := make([]string, 0, len(photos))
	paths := make([]string, 0, len(photos))
	stamp := s.cfg.Now().UnixMilli()

	for i, p := range photos {
		objectPath := fmt.Sprintf("properties/%s/%d-%d%s", id, stamp, i, photoExt(p))
		url, err := s.blobs.Upload(ctx, s.cfg.ImageBucket, objectPath, storage.Object{
			ContentType: p.ContentType,
			Size:        p.Size,
			Body:        p.Body,
		})
		if err != nil {
			return urls, append(paths, objectPath), fmt.Errorf("upload photo %d: %w", i, err)
		}
		urls = append(urls, url)
		paths = append(paths, objectPath)
	}
	return urls, paths, nil
}

func photoExt(p Photo) string {
	if ext := strings.ToLower(path.Ext(p.Filename)); ext != "" && len(ext) <= 6 {
		return ext
	}
	subtype := strings.TrimPrefix(strings.ToLower(p.ContentType), "image/")
	if i := strings.IndexAny(subtype, ";+"); i >= 0 {
		subtype = subtype[:i]
	}
	if subtype == "" {
		return ""
	}
	return "." + subtype
}

// objectPaths maps stored image URLs back to object paths, skipping foreign URLs.
func (s *service) objectPaths(urls []string) []string {
	paths := make([]string, 0, len(urls))
	for _, u := range urls {
		if p, ok := s.blobs.ObjectPath(s.cfg.ImageBucket, u); ok {
			paths = append(paths, p)
		}
	}
	return paths
}

// retainedImages keeps the order of final while rejecting URLs the listing does not own.
func retainedImages(current, final []string) ([]string, error) {
	if final == nil {
		return append([]string{}, current...), nil
	}

	owned := make(map[string]struct{}, len(current))
	for _, u := range current {
		owned[u] = struct{}{}
	}

	seen := make(map[string]struct{}, len(final))
	kept := make([]string, 0, len(final))
	for _, u := range final {
		u = strings.TrimSpace(u)
		if _, ok := owned[u]; !ok {
			return nil, newValidationError(map[string]string{"finalImageUrls": fmt.Sprintf("%q is not an image of this property", u)})
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		kept = append(kept, u)
	}
	return kept, nil
}

func droppedImages(current, retained []string) []string {
	keep := make(map[string]struct{}, len(retained))
	for _, u := range retained {
		keep[u] = struct{}{}
	}
	var dropped []string
	for _, u := range current {
		if _, ok := keep[u]; !ok {
			dropped = append(dropped, u)
		}
	}
	return dropped
}

// compensate removes the images listed in report and, unless KeepRecord is set, the
// base record. Both steps are idempotent and run detached from the request's
// cancellation. Failures are logged and recorded, never returned.
func (s *service) compensate(ctx context.Context, report CleanupReport) CleanupReport {
	ctx = context.WithoutCancel(ctx)
	logger := s.log(ctx).With(zap.String("propertyId", report.PropertyID.String()))

	if len(report.RemainingImages) > 0 {
		if err := s.blobs.Remove(ctx, s.cfg.ImageBucket, report.RemainingImages); err != nil {
			logger.Warn("remove uploaded images failed", zap.Strings("paths", report.RemainingImages), zap.Error(err))
			report.Errors = append(report.Errors, err.Error())
		} else {
			report.RemainingImages = nil
		}
	}

	if !report.KeepRecord && !report.RecordDeleted {
		err := s.repo.Delete(ctx, report.PropertyID)
		switch {
		case err == nil, errors.Is(err, persistence.ErrPropertyNotFound):
			report.RecordDeleted = true
		default:
			logger.Warn("delete base record failed", zap.Error(err))
			report.Errors = append(report.Errors, err.Error())
		}
	}

	return report
}
