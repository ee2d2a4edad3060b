package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnsureUniqueReturnsBaseWhenFree(t *testing.T) {
	t.Parallel()

	var probed []string
	got, err := EnsureUnique(context.Background(), "villa-test", func(_ context.Context, c string) (bool, error) {
		probed = append(probed, c)
		return true, nil
	})

	require.NoError(t, err)
	require.Equal(t, "villa-test", got)
	require.Equal(t, []string{"villa-test"}, probed)
}

func TestEnsureUniqueProbesNumberedSuffixes(t *testing.T) {
	t.Parallel()

	var probed []string
	got, err := EnsureUnique(context.Background(), "villa-test", func(_ context.Context, c string) (bool, error) {
		probed = append(probed, c)
		return c == "villa-test-3", nil
	})

	require.NoError(t, err)
	require.Equal(t, "villa-test-3", got)
	require.Equal(t, []string{"villa-test", "villa-test-1", "villa-test-2", "villa-test-3"}, probed)
}

func TestEnsureUniqueFallsBackToTimestamp(t *testing.T) {
	t.Parallel()

	calls := 0
	resolver := Resolver{Now: func() time.Time { return time.UnixMilli(1_700_000_042_137) }}
	got, err := resolver.EnsureUnique(context.Background(), "villa-test", func(context.Context, string) (bool, error) {
		calls++
		return false, nil
	})

	require.NoError(t, err)
	require.Equal(t, "villa-test-042137", got)
	require.Equal(t, 1+DefaultMaxAttempts, calls)

	require.Regexp(t, regexp.MustCompile(`^villa-test-\d{6}$`), got)
	for i := 1; i <= DefaultMaxAttempts; i++ {
		require.NotEqual(t, fmt.Sprintf("villa-test-%d", i), got)
	}
}

func TestEnsureUniqueRespectsMaxAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	resolver := Resolver{MaxAttempts: 2, Now: func() time.Time { return time.UnixMilli(5) }}
	got, err := resolver.EnsureUnique(context.Background(), "dar", func(context.Context, string) (bool, error) {
		calls++
		return false, nil
	})

	require.NoError(t, err)
	require.Equal(t, "dar-000005", got)
	require.Equal(t, 3, calls)
}

func TestEnsureUniquePropagatesCheckErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("store unavailable")
	_, err := EnsureUnique(context.Background(), "villa-test", func(_ context.Context, c string) (bool, error) {
		if c == "villa-test-1" {
			return false, boom
		}
		return false, nil
	})

	require.ErrorIs(t, err, boom)
}

func TestEnsureUniqueRejectsEmptyBase(t *testing.T) {
	t.Parallel()

	_, err := EnsureUnique(context.Background(), "", func(context.Context, string) (bool, error) {
		t.Fatal("availability should not be called")
		return false, nil
	})
	require.Error(t, err)
}

func TestEnsureUniqueStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := EnsureUnique(ctx, "villa-test", func(context.Context, string) (bool, error) {
		cancel()
		return false, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
