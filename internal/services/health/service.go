package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB          Pinger
	ObjectStore string
}

// NewService constructs a new health service. db may be nil when repositories are in memory.
func NewService(db Pinger, objectStore string) *Service {
	return &Service{DB: db, ObjectStore: objectStore}
}

// Status is the health payload.
type Status struct {
	OK          bool   `json:"ok"`
	Database    string `json:"database"`
	ObjectStore string `json:"objectStore"`
}

// Status reports whether the backing database answers a ping.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", ObjectStore: s.ObjectStore}
	if s.DB == nil {
		return st
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "postgres"
	return st
}
