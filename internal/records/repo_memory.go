package records

import (
	"context"
	"sync"
)

// MemoryRepo keeps records in process memory.
type MemoryRepo struct {
	mu      sync.RWMutex
	records []Record
	index   map[Record]struct{}
	byName  map[string][]int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		index:  make(map[Record]struct{}),
		byName: make(map[string][]int),
	}
}

func (r *MemoryRepo) Add(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	err := admit(rec, func(rec Record) (bool, error) {
		_, ok := r.index[rec]
		return ok, nil
	})
	if err != nil {
		return err
	}
	r.index[rec] = struct{}{}
	r.byName[rec.Name] = append(r.byName[rec.Name], len(r.records))
	r.records = append(r.records, rec)
	return nil
}

func (r *MemoryRepo) AddWith(ctx context.Context, name string, age int) error {
	return r.Add(ctx, NewRecord(name, age))
}

func (r *MemoryRepo) All(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *MemoryRepo) AllWithName(ctx context.Context, name string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	positions := r.byName[name]
	out := make([]Record, 0, len(positions))
	for _, pos := range positions {
		out = append(out, r.records[pos])
	}
	return out, nil
}

// Len reports how many records are stored.
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

var _ Repo = (*MemoryRepo)(nil)
