package directory

import (
	"context"
	"errors"
	"testing"
	"time"
)

// memCache is a minimal cache.Cache for decorator tests.
type memCache struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	getHits int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	if ok {
		m.getHits++
	}
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// countingDirectory counts lookups against the backing directory.
type countingDirectory struct {
	inner *Static
	calls int
}

func (c *countingDirectory) GroupsForUser(ctx context.Context, userID string) ([]string, error) {
	c.calls++
	return c.inner.GroupsForUser(ctx, userID)
}

func TestCachedHitsBackingOnce(t *testing.T) {
	ctx := context.Background()
	static := NewStatic()
	static.SetGroups("kermit", []string{"management", "sales"})
	counting := &countingDirectory{inner: static}
	cached := NewCached(counting, newMemCache(), time.Minute)

	for i := 0; i < 3; i++ {
		groups, err := cached.GroupsForUser(ctx, "kermit")
		if err != nil {
			t.Fatalf("GroupsForUser: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("groups = %v, want 2 entries", groups)
		}
	}
	if counting.calls != 1 {
		t.Errorf("backing directory calls = %d, want 1", counting.calls)
	}
}

func TestCachedFallsThroughOnCacheError(t *testing.T) {
	ctx := context.Background()
	static := NewStatic()
	static.SetGroups("gonzo", []string{"artists"})
	mc := newMemCache()
	mc.getErr = errors.New("cache down")
	cached := NewCached(static, mc, time.Minute)

	groups, err := cached.GroupsForUser(ctx, "gonzo")
	if err != nil {
		t.Fatalf("GroupsForUser: %v", err)
	}
	if len(groups) != 1 || groups[0] != "artists" {
		t.Errorf("groups = %v, want [artists]", groups)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	ctx := context.Background()
	static := NewStatic()
	static.SetGroups("piggy", []string{"stars"})
	counting := &countingDirectory{inner: static}
	cached := NewCached(counting, newMemCache(), time.Minute)

	if _, err := cached.GroupsForUser(ctx, "piggy"); err != nil {
		t.Fatalf("GroupsForUser: %v", err)
	}
	if err := cached.Invalidate(ctx, "piggy"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := cached.GroupsForUser(ctx, "piggy"); err != nil {
		t.Fatalf("GroupsForUser after invalidate: %v", err)
	}
	if counting.calls != 2 {
		t.Errorf("backing directory calls = %d, want 2", counting.calls)
	}
}
