package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/common"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

// Manager owns the registry of live session monitors, persists every
// snapshot to storage, publishes session events for the UI fan-out, and
// sweeps old terminal snapshots on a cron schedule.
type Manager struct {
	mu       sync.RWMutex
	monitors map[string]*Monitor

	// Highest session revision seen per demo ID. Update hooks run on the
	// mutating component's goroutine, so two snapshots of the same session
	// can arrive here out of order; anything at or below the recorded
	// revision is stale and must not overwrite a newer persisted snapshot.
	// Entries persist for the manager's lifetime - pruning on monitor
	// teardown would race the final hook deliveries this map orders.
	lastRevs map[string]uint64

	controller *Controller
	storage    interfaces.SessionStorage
	events     interfaces.EventService
	validate   *validator.Validate
	logger     arbor.ILogger

	cleanup    common.CleanupConfig
	cronRunner *cron.Cron
}

// NewManager creates a session manager and starts the cleanup schedule
func NewManager(
	backend interfaces.GenerationBackend,
	feed interfaces.ChangeFeed,
	storage interfaces.SessionStorage,
	events interfaces.EventService,
	monitorCfg common.MonitorConfig,
	cleanupCfg common.CleanupConfig,
	logger arbor.ILogger,
) (*Manager, error) {
	m := &Manager{
		monitors: make(map[string]*Monitor),
		lastRevs: make(map[string]uint64),
		storage:  storage,
		events:   events,
		validate: validator.New(),
		logger:   logger,
		cleanup:  cleanupCfg,
	}
	m.controller = NewController(backend, feed, monitorCfg, m.handleUpdate, logger)

	if cleanupCfg.Enabled {
		m.cronRunner = cron.New(cron.WithSeconds())
		if _, err := m.cronRunner.AddFunc(cleanupCfg.Schedule, m.cleanupOnce); err != nil {
			return nil, fmt.Errorf("invalid cleanup schedule %q: %w", cleanupCfg.Schedule, err)
		}
		m.cronRunner.Start()
		logger.Debug().
			Str("schedule", cleanupCfg.Schedule).
			Str("retention", cleanupCfg.Retention).
			Msg("Terminal session cleanup scheduled")
	}

	return m, nil
}

// StartDemo validates the request, starts a session and registers its monitor.
// A creation failure still returns the (terminal) session - callers surface
// it to the UI rather than receiving an error - but a validation failure is
// rejected before any backend call.
func (m *Manager) StartDemo(ctx context.Context, req CreateDemoRequest) (*models.DemoSession, error) {
	if err := m.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid demo request: %w", err)
	}

	monitor := m.controller.Start(ctx, req)
	snapshot := monitor.Snapshot()

	if !snapshot.Terminal {
		m.mu.Lock()
		m.monitors[snapshot.ID] = monitor
		m.mu.Unlock()

		// Deregister once monitoring stops; the snapshot stays in storage
		common.SafeGo(m.logger, "monitor-reaper:"+snapshot.ID, func() {
			<-monitor.Done()
			m.mu.Lock()
			delete(m.monitors, snapshot.ID)
			m.mu.Unlock()
		})
	}

	return snapshot, nil
}

// CancelDemo tears down a live session early. Returns false when no live
// monitor exists for the ID (already terminal or unknown).
func (m *Manager) CancelDemo(id string) bool {
	m.mu.RLock()
	monitor, ok := m.monitors[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	monitor.Cancel()
	m.logger.Info().Str("demo_id", id).Msg("Session cancelled by owner")
	return true
}

// GetSession returns the live snapshot when a monitor exists, otherwise the
// stored snapshot.
func (m *Manager) GetSession(ctx context.Context, id string) (*models.DemoSession, error) {
	m.mu.RLock()
	monitor, ok := m.monitors[id]
	m.mu.RUnlock()
	if ok {
		return monitor.Snapshot(), nil
	}
	return m.storage.GetSession(ctx, id)
}

// ListSessions lists stored session snapshots
func (m *Manager) ListSessions(ctx context.Context, opts *interfaces.SessionListOptions) ([]*models.DemoSession, error) {
	return m.storage.ListSessions(ctx, opts)
}

// LiveCount returns the number of sessions currently being monitored
func (m *Manager) LiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.monitors)
}

// handleUpdate is the reconciler update hook: persist the snapshot and
// publish events for the websocket fan-out. Runs on the mutating
// component's goroutine, off the reconciler lock, so snapshots of one
// session can arrive out of order; stale revisions are dropped here to
// keep storage and the UI converging on the newest state.
func (m *Manager) handleUpdate(snapshot *models.DemoSession, entry *models.LogEntry) {
	m.mu.Lock()
	if snapshot.Revision <= m.lastRevs[snapshot.ID] {
		m.mu.Unlock()
		m.logger.Debug().
			Str("demo_id", snapshot.ID).
			Msg("Dropping stale session snapshot delivered out of order")
		return
	}
	m.lastRevs[snapshot.ID] = snapshot.Revision
	m.mu.Unlock()

	ctx := context.Background()

	if err := m.storage.SaveSession(ctx, snapshot); err != nil {
		m.logger.Warn().Err(err).Str("demo_id", snapshot.ID).Msg("Failed to persist session snapshot")
	}

	if m.events == nil {
		return
	}

	if err := m.events.Publish(ctx, interfaces.Event{Type: interfaces.EventDemoUpdated, Payload: snapshot}); err != nil {
		m.logger.Warn().Err(err).Str("demo_id", snapshot.ID).Msg("Failed to publish demo update event")
	}
	if entry != nil {
		err := m.events.Publish(ctx, interfaces.Event{
			Type: interfaces.EventDemoLog,
			Payload: map[string]interface{}{
				"demo_id": snapshot.ID,
				"entry":   entry,
			},
		})
		if err != nil {
			m.logger.Warn().Err(err).Str("demo_id", snapshot.ID).Msg("Failed to publish demo log event")
		}
	}
	if snapshot.Terminal {
		if err := m.events.Publish(ctx, interfaces.Event{Type: interfaces.EventDemoTerminal, Payload: snapshot}); err != nil {
			m.logger.Warn().Err(err).Str("demo_id", snapshot.ID).Msg("Failed to publish demo terminal event")
		}
	}
}

// cleanupOnce removes terminal snapshots older than the retention window
func (m *Manager) cleanupOnce() {
	cutoff := time.Now().Add(-m.cleanup.RetentionDuration())
	deleted, err := m.storage.DeleteTerminalBefore(context.Background(), cutoff)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Terminal session cleanup failed")
		return
	}
	if deleted > 0 {
		m.logger.Info().
			Int("deleted", deleted).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Removed old terminal sessions")
	}
}

// Close cancels all live monitors and stops the cleanup schedule
func (m *Manager) Close() error {
	if m.cronRunner != nil {
		m.cronRunner.Stop()
	}

	m.mu.Lock()
	monitors := make([]*Monitor, 0, len(m.monitors))
	for _, monitor := range m.monitors {
		monitors = append(monitors, monitor)
	}
	m.monitors = make(map[string]*Monitor)
	m.mu.Unlock()

	for _, monitor := range monitors {
		monitor.Cancel()
	}

	m.logger.Info().Int("cancelled", len(monitors)).Msg("Session manager closed")
	return nil
}
