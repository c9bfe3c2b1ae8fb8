package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

// SessionStorage implements the SessionStorage interface for Badger
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

// SaveSession upserts a session snapshot keyed by demo ID
func (s *SessionStorage) SaveSession(ctx context.Context, session *models.DemoSession) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.db.Store().Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns the stored snapshot for a demo ID
func (s *SessionStorage) GetSession(ctx context.Context, id string) (*models.DemoSession, error) {
	var session models.DemoSession
	if err := s.db.Store().Get(id, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// ListSessions returns stored snapshots, newest first
func (s *SessionStorage) ListSessions(ctx context.Context, opts *interfaces.SessionListOptions) ([]*models.DemoSession, error) {
	query := badgerhold.Where("ID").Ne("")

	if opts != nil {
		if opts.Stage != "" {
			query = query.And("Stage").Eq(opts.Stage)
		}
		if opts.Terminal != nil {
			query = query.And("Terminal").Eq(*opts.Terminal)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
	}
	query = query.SortBy("CreatedAt").Reverse()

	var sessions []models.DemoSession
	if err := s.db.Store().Find(&sessions, query); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	result := make([]*models.DemoSession, len(sessions))
	for i := range sessions {
		result[i] = &sessions[i]
	}
	return result, nil
}

// DeleteSession removes a stored snapshot
func (s *SessionStorage) DeleteSession(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.DemoSession{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("session not found: %s", id)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteTerminalBefore removes terminal snapshots whose terminal transition
// happened before the cutoff. TerminalAt is a pointer field, so the time
// comparison runs in code rather than in the query.
func (s *SessionStorage) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var sessions []models.DemoSession
	if err := s.db.Store().Find(&sessions, badgerhold.Where("Terminal").Eq(true)); err != nil {
		return 0, fmt.Errorf("failed to query terminal sessions: %w", err)
	}

	deleted := 0
	for i := range sessions {
		session := &sessions[i]
		if session.TerminalAt == nil || !session.TerminalAt.Before(cutoff) {
			continue
		}
		if err := s.db.Store().Delete(session.ID, &models.DemoSession{}); err != nil {
			s.logger.Warn().Err(err).Str("demo_id", session.ID).Msg("Failed to delete expired session")
			continue
		}
		deleted++
	}

	return deleted, nil
}
