package interfaces

import (
	"context"
	"time"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

// SessionListOptions filters and pages session list queries
type SessionListOptions struct {
	Stage    models.Stage
	Terminal *bool
	Limit    int
	Offset   int
}

// SessionStorage persists demo session snapshots.
// The reconciler remains the only writer of live session state; storage
// holds read-side snapshots so sessions survive process restarts and can
// be listed after their monitors are gone.
type SessionStorage interface {
	// SaveSession upserts a session snapshot
	SaveSession(ctx context.Context, session *models.DemoSession) error

	// GetSession retrieves a session snapshot by ID
	GetSession(ctx context.Context, id string) (*models.DemoSession, error)

	// ListSessions returns session snapshots matching the options
	ListSessions(ctx context.Context, opts *SessionListOptions) ([]*models.DemoSession, error)

	// DeleteSession removes a session snapshot
	DeleteSession(ctx context.Context, id string) error

	// DeleteTerminalBefore removes terminal sessions whose terminal
	// transition is older than the cutoff. Returns the number deleted.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error)
}
