// -----------------------------------------------------------------------
// Demo Session - Single consistent view of a generation job
// -----------------------------------------------------------------------

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stage represents the canonical pipeline phase of a demo generation job.
type Stage string

const (
	StagePending   Stage = "pending"
	StageBuilding  Stage = "building"
	StagePlanning  Stage = "planning"
	StageExecuting Stage = "executing"
	StageRecording Stage = "recording"
	StageCompleted Stage = "completed"
	StageError     Stage = "error"
)

// IsTerminal returns true for stages after which no further state change is permitted.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageError
}

// IsValidStage checks if a given Stage is one of the canonical constants
func IsValidStage(stage Stage) bool {
	switch stage {
	case StagePending, StageBuilding, StagePlanning, StageExecuting,
		StageRecording, StageCompleted, StageError:
		return true
	default:
		return false
	}
}

// LogKind classifies a session log entry
type LogKind string

const (
	LogKindReasoning    LogKind = "reasoning"
	LogKindAction       LogKind = "action"
	LogKindMilestone    LogKind = "milestone"
	LogKindVerification LogKind = "verification"
	LogKindError        LogKind = "error"
)

// LogEntry is an immutable entry in a session's activity log.
// Insertion order is the only order; entries are never reordered by timestamp.
type LogEntry struct {
	Kind      LogKind   `json:"kind"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ObservationSource identifies which channel reported a stage observation
type ObservationSource string

const (
	SourcePoll ObservationSource = "poll"
	SourcePush ObservationSource = "push"
)

// Observation is a raw status report from the poller or the push listener.
// RawStatus is the backend's status string before normalization; Message
// carries the backend's human-readable detail when present (used for
// errorDetail on failures).
type Observation struct {
	Source    ObservationSource `json:"source"`
	RawStatus string            `json:"raw_status"`
	Message   string            `json:"message,omitempty"`
}

// DemoSession is the single mutable entity tracking one generation job.
//
// Invariants (enforced by the session reconciler, the sole writer):
//   - Progress never decreases.
//   - Terminal transitions exactly once; all stage/progress writes after the
//     first terminal transition are no-ops.
//   - Logs are append-only, and nothing is appended after Terminal is set.
//   - MilestoneCount is incremented only by milestone-kind log entries.
type DemoSession struct {
	ID      string `json:"id" badgerhold:"unique"`
	RepoURL string `json:"repo_url"`
	Prompt  string `json:"prompt"`
	Title   string `json:"title,omitempty"`

	Stage    Stage `json:"stage" badgerhold:"index"`
	Progress int   `json:"progress"`

	Logs           []LogEntry `json:"logs"`
	MilestoneCount int        `json:"milestone_count"`
	CurrentAction  string     `json:"current_action,omitempty"`

	Terminal    bool   `json:"terminal" badgerhold:"index"`
	ErrorDetail string `json:"error_detail,omitempty"`

	// Revision increments on every mutation. Snapshot consumers compare
	// revisions to discard copies delivered out of order.
	Revision uint64 `json:"revision"`

	CreatedAt  time.Time  `json:"created_at" badgerhold:"index"`
	UpdatedAt  time.Time  `json:"updated_at"`
	TerminalAt *time.Time `json:"terminal_at,omitempty"`
}

// NewDemoSession creates a session in its initial (pre-backend) state.
// The ID is assigned once by the session controller and is immutable.
func NewDemoSession(id, repoURL, prompt, title string) *DemoSession {
	now := time.Now()
	return &DemoSession{
		ID:        id,
		RepoURL:   repoURL,
		Prompt:    prompt,
		Title:     title,
		Stage:     StagePending,
		Progress:  0,
		Logs:      []LogEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy safe for readers outside the reconciler.
func (s *DemoSession) Clone() *DemoSession {
	copied := *s
	copied.Logs = make([]LogEntry, len(s.Logs))
	copy(copied.Logs, s.Logs)
	if s.TerminalAt != nil {
		t := *s.TerminalAt
		copied.TerminalAt = &t
	}
	return &copied
}

// LastLog returns the most recent log entry, or nil if the log is empty.
func (s *DemoSession) LastLog() *LogEntry {
	if len(s.Logs) == 0 {
		return nil
	}
	return &s.Logs[len(s.Logs)-1]
}

// ToJSON serializes the session for storage or transport
func (s *DemoSession) ToJSON() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal demo session: %w", err)
	}
	return data, nil
}

// DemoSessionFromJSON deserializes a session from JSON
func DemoSessionFromJSON(data []byte) (*DemoSession, error) {
	var session DemoSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal demo session: %w", err)
	}
	return &session, nil
}

// Validate validates the session's structural invariants
func (s *DemoSession) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session ID is required")
	}
	if !IsValidStage(s.Stage) {
		return fmt.Errorf("invalid stage: %s", s.Stage)
	}
	if s.Progress < 0 || s.Progress > 100 {
		return fmt.Errorf("progress out of range: %d", s.Progress)
	}
	if s.Terminal && !s.Stage.IsTerminal() {
		return fmt.Errorf("terminal session with non-terminal stage: %s", s.Stage)
	}
	return nil
}
