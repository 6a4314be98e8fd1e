package snapshots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"media-stage/internal/aspect"
	"media-stage/internal/logging"
)

// How long a confirmed miss is remembered before the backend is asked again.
const negativeTTL = 30 * time.Second

// DefaultTTL is how long a snapshot stays in memory after its last use.
const DefaultTTL = 30 * time.Minute

// Observer records snapshot cache activity.
type Observer interface {
	ObserveLookup(tier string, hit bool)
	ObserveWrite(err error)
}

type missing struct{}

// Cache is an in-memory snapshot tier in front of an optional Backend.
type Cache struct {
	backend  Backend
	observer Observer
	items    *cache.Cache
}

var _ aspect.SnapshotSource = (*Cache)(nil)

// NewCache creates a Cache. backend may be nil for a memory-only cache.
func NewCache(backend Backend, ttl time.Duration, observer Observer) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		backend:  backend,
		observer: observer,
		items:    cache.New(ttl, ttl*2),
	}
}

// Snapshot implements aspect.SnapshotSource.
func (c *Cache) Snapshot(attachmentID string) (aspect.Snapshot, bool) {
	if v, ok := c.items.Get(attachmentID); ok {
		if entry, ok := v.(Entry); ok {
			c.observeLookup("memory", true)
			c.items.SetDefault(attachmentID, entry)
			return entry.Snapshot(), true
		}
		// remembered miss
		c.observeLookup("memory", false)
		return aspect.Snapshot{}, false
	}
	c.observeLookup("memory", false)

	if c.backend == nil {
		return aspect.Snapshot{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	entry, err := c.backend.Get(ctx, attachmentID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.Warn("Snapshot lookup for %s failed: %v", attachmentID, err)
		}
		c.observeLookup("database", false)
		c.items.Set(attachmentID, missing{}, negativeTTL)
		return aspect.Snapshot{}, false
	}

	c.observeLookup("database", true)
	c.items.SetDefault(attachmentID, entry)
	return entry.Snapshot(), true
}

// Get returns the full entry for attachmentID from either tier.
func (c *Cache) Get(ctx context.Context, attachmentID string) (Entry, error) {
	if v, ok := c.items.Get(attachmentID); ok {
		if entry, ok := v.(Entry); ok {
			return entry, nil
		}
	}
	if c.backend == nil {
		return Entry{}, ErrNotFound
	}
	entry, err := c.backend.Get(ctx, attachmentID)
	if err != nil {
		return Entry{}, err
	}
	c.items.SetDefault(attachmentID, entry)
	return entry, nil
}

// Record stores a measured snapshot in both tiers.
func (c *Cache) Record(ctx context.Context, entry Entry) error {
	if !entry.Ratio.Valid() {
		c.observeWrite(ErrInvalidRatio)
		return fmt.Errorf("record %s: %w", entry.AttachmentID, ErrInvalidRatio)
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	if c.backend != nil {
		if err := c.backend.Put(ctx, entry); err != nil {
			c.observeWrite(err)
			return err
		}
	}

	c.items.SetDefault(entry.AttachmentID, entry)
	c.observeWrite(nil)
	logging.Debug("Recorded snapshot %s ratio=%.4f source=%s", entry.AttachmentID, float64(entry.Ratio), entry.Source)
	return nil
}

// Forget removes attachmentID from both tiers.
func (c *Cache) Forget(ctx context.Context, attachmentID string) error {
	c.items.Delete(attachmentID)
	if c.backend == nil {
		return nil
	}
	return c.backend.Delete(ctx, attachmentID)
}

// Len returns the number of entries held in memory, including remembered misses.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

func (c *Cache) observeLookup(tier string, hit bool) {
	if c.observer != nil {
		c.observer.ObserveLookup(tier, hit)
	}
}

func (c *Cache) observeWrite(err error) {
	if c.observer != nil {
		c.observer.ObserveWrite(err)
	}
}
