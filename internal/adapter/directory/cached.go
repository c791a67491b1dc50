package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/TaskForge/internal/port/cache"
	"github.com/Strob0t/TaskForge/internal/port/directory"
)

// Cached decorates a directory with a TTL cache. Candidate queries resolve
// the caller's groups on every execution; the cache keeps that off the
// backing directory. Cache failures fall through to the inner directory.
type Cached struct {
	inner directory.Directory
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps inner with the given cache and TTL.
func NewCached(inner directory.Directory, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: c, ttl: ttl}
}

func groupKey(userID string) string {
	return "directory:groups:" + userID
}

func (c *Cached) GroupsForUser(ctx context.Context, userID string) ([]string, error) {
	key := groupKey(userID)

	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var groups []string
		if err := json.Unmarshal(data, &groups); err == nil {
			return groups, nil
		}
	} else if err != nil {
		slog.Warn("directory cache get failed", "user", userID, "error", err)
	}

	groups, err := c.inner.GroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("groups for user %s: %w", userID, err)
	}

	if data, err := json.Marshal(groups); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			slog.Warn("directory cache set failed", "user", userID, "error", err)
		}
	}
	return groups, nil
}

// Invalidate drops the cached memberships of a user.
func (c *Cached) Invalidate(ctx context.Context, userID string) error {
	return c.cache.Delete(ctx, groupKey(userID))
}
