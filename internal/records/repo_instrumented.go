package records

import (
	"context"
	"errors"
	"time"

	"records-backend/internal/shared/metrics"
	"records-backend/internal/shared/telemetry"
)

// InstrumentedRepo logs and counts calls to another Repo. Outcomes pass
// through untouched. Logs carry the call shape and result, never the record.
type InstrumentedRepo struct {
	Next    Repo
	Backend string
}

func (r *InstrumentedRepo) Add(ctx context.Context, rec Record) error {
	start := time.Now()
	err := r.Next.Add(ctx, rec)
	r.observeAdmission("record", err, time.Since(start))
	return err
}

func (r *InstrumentedRepo) AddWith(ctx context.Context, name string, age int) error {
	start := time.Now()
	err := r.Next.AddWith(ctx, name, age)
	r.observeAdmission("fields", err, time.Since(start))
	return err
}

func (r *InstrumentedRepo) All(ctx context.Context) ([]Record, error) {
	start := time.Now()
	recs, err := r.Next.All(ctx)
	metrics.ObserveQuery("all")
	metrics.ObserveStoreDuration("all", time.Since(start))
	if err != nil {
		telemetry.Error("record.query_failed", map[string]any{"backend": r.Backend, "kind": "all", "error": err})
	}
	return recs, err
}

func (r *InstrumentedRepo) AllWithName(ctx context.Context, name string) ([]Record, error) {
	start := time.Now()
	recs, err := r.Next.AllWithName(ctx, name)
	metrics.ObserveQuery("by_name")
	metrics.ObserveStoreDuration("by_name", time.Since(start))
	if err != nil {
		telemetry.Error("record.query_failed", map[string]any{"backend": r.Backend, "kind": "by_name", "error": err})
	}
	return recs, err
}

func (r *InstrumentedRepo) observeAdmission(shape string, err error, took time.Duration) {
	result := admissionResult(err)
	metrics.ObserveAdmission(shape, result)
	metrics.ObserveStoreDuration("add", took)

	fields := map[string]any{
		"backend":     r.Backend,
		"shape":       shape,
		"result":      result,
		"duration_ms": float64(took.Microseconds()) / 1000.0,
	}
	switch result {
	case "admitted":
		telemetry.Info("record.admitted", fields)
	case "invalid":
		var verr *ValidationError
		if errors.As(err, &verr) {
			fields["field"] = verr.Field
		}
		telemetry.Info("record.rejected", fields)
	case "duplicate":
		telemetry.Info("record.rejected", fields)
	default:
		fields["error"] = err
		telemetry.Error("record.add_failed", fields)
	}
}

func admissionResult(err error) string {
	switch {
	case err == nil:
		return "admitted"
	case errors.Is(err, ErrInvalidRecord):
		return "invalid"
	case errors.Is(err, ErrDuplicateRecord):
		return "duplicate"
	default:
		return "error"
	}
}

var _ Repo = (*InstrumentedRepo)(nil)
