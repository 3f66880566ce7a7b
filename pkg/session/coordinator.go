package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusUninitialized Status = iota
	StatusCreating
	StatusActive
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusCreating:
		return "creating"
	case StatusActive:
		return "active"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// SessionCreator is the slice of the transport client the coordinator needs.
type SessionCreator interface {
	CreateSession(ctx context.Context) (string, error)
}

var ErrAlreadyStarted = errors.New("session creation already attempted")

// Coordinator owns session identity. The session is created exactly once per
// process lifetime; a failed creation stays Failed until the process restarts
// (no auto-retry).
type Coordinator struct {
	creator SessionCreator
	logger  zerolog.Logger

	mu        sync.Mutex
	status    Status
	id        string
	createdAt time.Time
	attempted bool
}

func NewCoordinator(creator SessionCreator, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		creator: creator,
		logger:  logger.With().Str("component", "session").Logger(),
		status:  StatusUninitialized,
	}
}

// Start performs the one-shot session creation. A second call returns
// ErrAlreadyStarted regardless of the first outcome.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.attempted {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.attempted = true
	c.status = StatusCreating
	c.mu.Unlock()

	id, err := c.creator.CreateSession(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = StatusFailed
		c.logger.Error().Err(err).Msg("session creation failed")
		return errors.Wrap(err, "create session")
	}
	c.status = StatusActive
	c.id = id
	c.createdAt = time.Now()
	c.logger.Info().Str("session_id", id).Msg("session active")
	return nil
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SessionID returns the server-assigned id; ok is false unless the session is
// Active. The id is written once and never mutated afterwards.
func (c *Coordinator) SessionID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id, c.status == StatusActive
}

func (c *Coordinator) CreatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createdAt
}
