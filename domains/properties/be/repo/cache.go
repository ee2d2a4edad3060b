package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"

	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
)

const (
	DefaultLookupTTL      = 5 * time.Minute
	defaultLookupCapacity = 1000
)

// CachedLookups keeps reference names in a local LRU. Failed lookups are not cached.
type CachedLookups struct {
	next     Lookups
	ttl      time.Duration
	names    *ccache.Cache[string]
	profiles *ccache.Cache[persistence.ProfileRecord]
}

// NewCachedLookups wraps next with an in-process cache. A non-positive ttl uses DefaultLookupTTL.
func NewCachedLookups(next Lookups, ttl time.Duration) *CachedLookups {
	if next == nil {
		panic("lookups are required")
	}
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &CachedLookups{
		next:     next,
		ttl:      ttl,
		names:    ccache.New(ccache.Configure[string]().MaxSize(defaultLookupCapacity)),
		profiles: ccache.New(ccache.Configure[persistence.ProfileRecord]().MaxSize(defaultLookupCapacity)),
	}
}

func (c *CachedLookups) PropertyTypeName(ctx context.Context, id uuid.UUID) (string, error) {
	return c.name("type:"+id.String(), func() (string, error) { return c.next.PropertyTypeName(ctx, id) })
}

func (c *CachedLookups) CityName(ctx context.Context, id uuid.UUID) (string, error) {
	return c.name("city:"+id.String(), func() (string, error) { return c.next.CityName(ctx, id) })
}

func (c *CachedLookups) RegionName(ctx context.Context, id uuid.UUID) (string, error) {
	return c.name("region:"+id.String(), func() (string, error) { return c.next.RegionName(ctx, id) })
}

func (c *CachedLookups) Profile(ctx context.Context, userID string) (persistence.ProfileRecord, error) {
	item, err := c.profiles.Fetch(userID, c.ttl, func() (persistence.ProfileRecord, error) {
		return c.next.Profile(ctx, userID)
	})
	if err != nil {
		return persistence.ProfileRecord{}, err
	}
	return item.Value(), nil
}

// ForgetProfile drops a cached profile, e.g. after the owner edits it.
func (c *CachedLookups) ForgetProfile(userID string) {
	c.profiles.Delete(userID)
}

// Stop releases the cache workers.
func (c *CachedLookups) Stop() {
	c.names.Stop()
	c.profiles.Stop()
}

func (c *CachedLookups) name(key string, load func() (string, error)) (string, error) {
	item, err := c.names.Fetch(key, c.ttl, load)
	if err != nil {
		return "", err
	}
	return item.Value(), nil
}
