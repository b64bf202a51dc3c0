package records

import "context"

// Repo stores admitted records.
//
// Add and AddWith reject a record with a *ValidationError when it is invalid
// and with a *DuplicateError when an equal record is already stored, in that
// order. A rejected call leaves the stored records untouched.
type Repo interface {
	Add(ctx context.Context, record Record) error
	AddWith(ctx context.Context, name string, age int) error
	// All returns every admitted record in insertion order.
	All(ctx context.Context) ([]Record, error)
	// AllWithName returns the records whose name equals name exactly,
	// in insertion order.
	AllWithName(ctx context.Context, name string) ([]Record, error)
}
