package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medipoint/scheduler-api/internal/model"
	"github.com/medipoint/scheduler-api/internal/repository"
)

// availabilityCache is a read-through cache in front of the availability
// store. Windows change rarely (doctor-profile edits) and are read on every
// booking, so a short TTL keeps the conflict check off the database.
type availabilityCache struct {
	inner repository.AvailabilityRepository
	cache *gocache.Cache
}

func NewAvailabilityCache(inner repository.AvailabilityRepository, ttl time.Duration) repository.AvailabilityRepository {
	return &availabilityCache{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *availabilityCache) GetWindows(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error) {
	key := fmt.Sprintf("windows:%s:%d", doctorID, weekday)

	if cached, found := c.cache.Get(key); found {
		return cached.([]*model.AvailabilityWindow), nil
	}

	windows, err := c.inner.GetWindows(ctx, doctorID, weekday)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, windows, gocache.DefaultExpiration)
	return windows, nil
}
