package slug

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultMaxAttempts bounds the numbered suffixes probed before falling back to a timestamp.
const DefaultMaxAttempts = 10

// AvailabilityFunc reports whether candidate is free to use.
type AvailabilityFunc func(ctx context.Context, candidate string) (bool, error)

// Resolver turns a candidate token into one the AvailabilityFunc accepts.
// Probes run one at a time. The storage layer's unique constraint remains the
// real guarantee; the resolver only lowers the chance of a conflicting write.
type Resolver struct {
	MaxAttempts int
	Now         func() time.Time
}

// EnsureUnique probes base, then base-1 ... base-MaxAttempts. When all of them are
// taken it returns base-NNNNNN built from the current time in milliseconds,
// without checking it again.
func (r Resolver) EnsureUnique(ctx context.Context, base string, available AvailabilityFunc) (string, error) {
	if base == "" {
		return "", errors.New("ensure unique slug: base is required")
	}
	if available == nil {
		return "", errors.New("ensure unique slug: availability check is required")
	}

	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	ok, err := available(ctx, base)
	if err != nil {
		return "", fmt.Errorf("check slug %q: %w", base, err)
	}
	if ok {
		return base, nil
	}

	for i := 1; i <= maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate := fmt.Sprintf("%s-%d", base, i)
		ok, err := available(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if ok {
			return candidate, nil
		}
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return fmt.Sprintf("%s-%06d", base, now().UnixMilli()%1_000_000), nil
}

// EnsureUnique resolves base with the default Resolver.
func EnsureUnique(ctx context.Context, base string, available AvailabilityFunc) (string, error) {
	return Resolver{}.EnsureUnique(ctx, base, available)
}
