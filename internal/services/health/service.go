package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the health payload served at /api/v1/health.
type Status struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}

// Service encapsulates health-related checks.
type Service struct {
	Backend string
	Store   Pinger
}

// NewService constructs a health service for the named backend. store may
// be nil for backends with nothing to ping.
func NewService(backend string, store Pinger) *Service {
	return &Service{Backend: backend, Store: store}
}

// Status pings the store, if any, and reports the result.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Backend: s.Backend}
	if s.Store == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		st.OK = false
		st.Error = err.Error()
	}
	return st
}
