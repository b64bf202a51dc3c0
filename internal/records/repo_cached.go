package records

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedRepo caches AllWithName results in front of another Repo. Any
// successful admission flushes the cache. Admissions hold the write lock
// while they run so no lookup can repopulate the cache with a stale result.
type CachedRepo struct {
	Next Repo

	mu    sync.RWMutex
	cache *gocache.Cache
}

func NewCachedRepo(next Repo, ttl time.Duration) *CachedRepo {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedRepo{
		Next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (r *CachedRepo) Add(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Next.Add(ctx, rec); err != nil {
		return err
	}
	r.cache.Flush()
	return nil
}

func (r *CachedRepo) AddWith(ctx context.Context, name string, age int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Next.AddWith(ctx, name, age); err != nil {
		return err
	}
	r.cache.Flush()
	return nil
}

func (r *CachedRepo) All(ctx context.Context) ([]Record, error) {
	return r.Next.All(ctx)
}

func (r *CachedRepo) AllWithName(ctx context.Context, name string) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.cache.Get(name); ok {
		cached := v.([]Record)
		out := make([]Record, len(cached))
		copy(out, cached)
		return out, nil
	}
	recs, err := r.Next.AllWithName(ctx, name)
	if err != nil {
		return nil, err
	}
	stored := make([]Record, len(recs))
	copy(stored, recs)
	r.cache.SetDefault(name, stored)
	return recs, nil
}

var _ Repo = (*CachedRepo)(nil)
