package interfaces

import (
	"context"
	"time"
)

// CreateDemoResult is the backend's response to a demo creation request
type CreateDemoResult struct {
	DemoID    string `json:"demo_id"`
	ProjectID string `json:"project_id,omitempty"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// DemoStatus is a polled snapshot of a demo row.
// Status is the raw backend vocabulary and may contain values this service
// does not recognize; callers must tolerate unknown strings.
type DemoStatus struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// GenerationBackend is the black-box demo generation pipeline.
// It exposes exactly one write (CreateDemo) and one read (GetDemoStatus).
type GenerationBackend interface {
	// CreateDemo submits a generation request and returns the assigned demo ID
	CreateDemo(ctx context.Context, repoURL, prompt, title string) (*CreateDemoResult, error)

	// GetDemoStatus reads the demo's current status row
	GetDemoStatus(ctx context.Context, demoID string) (*DemoStatus, error)
}

// RowChange is a single push notification for a changed demo row
type RowChange struct {
	New DemoStatus `json:"new"`
}

// ChangeFeed delivers row-change notifications for a single demo.
// The returned channel is closed when the subscription ends (context
// cancellation or feed drop). No replay and no reconnection are provided;
// the poller is the fallback when the feed is silent.
type ChangeFeed interface {
	Subscribe(ctx context.Context, demoID string) (<-chan RowChange, error)
}
