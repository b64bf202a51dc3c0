package records

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
)

// runRepoContract checks the admission and lookup rules every Repo must
// follow. newRepo must return an empty store.
func runRepoContract(t *testing.T, newRepo func(t *testing.T) Repo) {
	t.Helper()
	ctx := context.Background()

	t.Run("admits distinct records in order", func(t *testing.T) {
		repo := newRepo(t)
		in := []Record{
			NewRecord("bob", 40),
			NewRecord("alice", 30),
			NewRecord("alice", 31),
			NewRecord("carol", -1),
		}
		for _, rec := range in {
			if err := repo.Add(ctx, rec); err != nil {
				t.Fatalf("add %s: %v", rec, err)
			}
		}
		got, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("all: %v", err)
		}
		if !slices.Equal(got, in) {
			t.Fatalf("expected %v, got %v", in, got)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Add(ctx, NewRecord("", 10))
		if !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("expected invalid record, got %v", err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "name" {
			t.Fatalf("expected name validation error, got %#v", err)
		}
		assertEmpty(t, repo)
	})

	t.Run("rejects duplicate", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Add(ctx, NewRecord("alice", 30)); err != nil {
			t.Fatalf("first add: %v", err)
		}
		err := repo.Add(ctx, NewRecord("alice", 30))
		if !errors.Is(err, ErrDuplicateRecord) {
			t.Fatalf("expected duplicate, got %v", err)
		}
		var derr *DuplicateError
		if !errors.As(err, &derr) || derr.Record != NewRecord("alice", 30) {
			t.Fatalf("expected duplicate error carrying the record, got %#v", err)
		}
		got, _ := repo.All(ctx)
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
	})

	t.Run("same name different age is not a duplicate", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Add(ctx, NewRecord("alice", 30)); err != nil {
			t.Fatalf("first add: %v", err)
		}
		if err := repo.AddWith(ctx, "alice", 31); err != nil {
			t.Fatalf("second add: %v", err)
		}
	})

	t.Run("AddWith matches Add", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.AddWith(ctx, "dave", 50); err != nil {
			t.Fatalf("add with: %v", err)
		}
		if err := repo.Add(ctx, NewRecord("dave", 50)); !errors.Is(err, ErrDuplicateRecord) {
			t.Fatalf("expected duplicate across shapes, got %v", err)
		}
		if err := repo.AddWith(ctx, "", 50); !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("expected invalid from AddWith, got %v", err)
		}
	})

	t.Run("AllWithName filters in order", func(t *testing.T) {
		repo := newRepo(t)
		for _, rec := range []Record{
			NewRecord("alice", 30),
			NewRecord("bob", 40),
			NewRecord("alice", 25),
			NewRecord("alicia", 30),
		} {
			if err := repo.Add(ctx, rec); err != nil {
				t.Fatalf("add %s: %v", rec, err)
			}
		}
		got, err := repo.AllWithName(ctx, "alice")
		if err != nil {
			t.Fatalf("all with name: %v", err)
		}
		want := []Record{NewRecord("alice", 30), NewRecord("alice", 25)}
		if !slices.Equal(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}

		none, err := repo.AllWithName(ctx, "zed")
		if err != nil {
			t.Fatalf("all with name: %v", err)
		}
		if none == nil || len(none) != 0 {
			t.Fatalf("expected empty non-nil result, got %#v", none)
		}
		empty, err := repo.AllWithName(ctx, "")
		if err != nil {
			t.Fatalf("all with empty name: %v", err)
		}
		if len(empty) != 0 {
			t.Fatalf("expected no records for empty name, got %v", empty)
		}
	})

	t.Run("results are copies", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Add(ctx, NewRecord("alice", 30)); err != nil {
			t.Fatalf("add: %v", err)
		}
		got, _ := repo.All(ctx)
		got[0].Name = "mallory"
		again, _ := repo.All(ctx)
		if again[0].Name != "alice" {
			t.Fatalf("store was mutated through result: %v", again)
		}
	})

	t.Run("concurrent duplicates admit once", func(t *testing.T) {
		repo := newRepo(t)
		const workers = 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			admitted int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.Add(ctx, NewRecord("eve", 22))
				if err == nil {
					mu.Lock()
					admitted++
					mu.Unlock()
					return
				}
				if !errors.Is(err, ErrDuplicateRecord) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		if admitted != 1 {
			t.Fatalf("expected exactly one admission, got %d", admitted)
		}
		got, _ := repo.All(ctx)
		if len(got) != 1 {
			t.Fatalf("expected one stored record, got %v", got)
		}
	})
}

func assertEmpty(t *testing.T, repo Repo) {
	t.Helper()
	got, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty store, got %v", got)
	}
}
