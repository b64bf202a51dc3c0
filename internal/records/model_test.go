package records

import (
	"slices"
	"testing"
)

func TestRecordString(t *testing.T) {
	got := NewRecord("alice", 30).String()
	if got != "Record{name=alice, age=30}" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestRecordEqual(t *testing.T) {
	a := NewRecord("alice", 30)
	if !a.Equal(Record{Name: "alice", Age: 30}) {
		t.Fatalf("expected equal")
	}
	if a.Equal(NewRecord("alice", 31)) || a.Equal(NewRecord("Alice", 30)) {
		t.Fatalf("expected not equal")
	}
	if a != NewRecord("alice", 30) {
		t.Fatalf("expected == to agree with Equal")
	}
}

func TestCompareByNameOnly(t *testing.T) {
	if Compare(NewRecord("alice", 99), NewRecord("bob", 1)) >= 0 {
		t.Fatalf("alice should order before bob")
	}
	if Compare(NewRecord("alice", 1), NewRecord("alice", 2)) != 0 {
		t.Fatalf("age must not affect Compare")
	}
}

func TestSortByNameThenAge(t *testing.T) {
	recs := []Record{
		NewRecord("bob", 40),
		NewRecord("alice", 31),
		NewRecord("alice", -2),
		NewRecord("", 5),
	}
	SortByNameThenAge(recs)
	want := []Record{
		NewRecord("", 5),
		NewRecord("alice", -2),
		NewRecord("alice", 31),
		NewRecord("bob", 40),
	}
	if !slices.Equal(recs, want) {
		t.Fatalf("unexpected order: %v", recs)
	}
}

func TestFilterByNameNeverNil(t *testing.T) {
	got := filterByName(nil, "alice")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
