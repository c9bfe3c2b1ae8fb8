package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/common"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

func newTestStorage(t *testing.T) interfaces.SessionStorage {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "sessions"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionStorage(db, logger)
}

func terminalSession(id string, stage models.Stage, terminalAt time.Time) *models.DemoSession {
	s := models.NewDemoSession(id, "https://github.com/acme/shop", "Show the checkout flow", "")
	s.Stage = stage
	s.Terminal = true
	s.TerminalAt = &terminalAt
	return s
}

func TestSessionStorage_SaveAndGet(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	session := models.NewDemoSession("demo_1", "https://github.com/acme/shop", "Show the checkout flow", "Checkout")
	session.Stage = models.StageBuilding
	session.Progress = 25
	session.Logs = append(session.Logs, models.LogEntry{
		Kind: models.LogKindAction, Text: "Setting up the project sandbox", Timestamp: time.Now(),
	})

	require.NoError(t, storage.SaveSession(ctx, session))

	got, err := storage.GetSession(ctx, "demo_1")
	require.NoError(t, err)
	assert.Equal(t, models.StageBuilding, got.Stage)
	assert.Equal(t, 25, got.Progress)
	require.Len(t, got.Logs, 1)
	assert.Equal(t, models.LogKindAction, got.Logs[0].Kind)
}

func TestSessionStorage_SaveUpsertsAndValidates(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.Error(t, storage.SaveSession(ctx, nil))
	require.Error(t, storage.SaveSession(ctx, &models.DemoSession{}))

	session := models.NewDemoSession("demo_2", "https://github.com/acme/shop", "prompt", "")
	require.NoError(t, storage.SaveSession(ctx, session))

	session.Progress = 90
	session.Stage = models.StageRecording
	require.NoError(t, storage.SaveSession(ctx, session))

	got, err := storage.GetSession(ctx, "demo_2")
	require.NoError(t, err)
	assert.Equal(t, 90, got.Progress)
}

func TestSessionStorage_GetMissing(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.GetSession(context.Background(), "demo_nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSessionStorage_ListFilters(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	live := models.NewDemoSession("demo_live", "https://github.com/acme/shop", "prompt", "")
	live.Stage = models.StageExecuting
	require.NoError(t, storage.SaveSession(ctx, live))

	done := terminalSession("demo_done", models.StageCompleted, time.Now())
	require.NoError(t, storage.SaveSession(ctx, done))

	failed := terminalSession("demo_failed", models.StageError, time.Now())
	require.NoError(t, storage.SaveSession(ctx, failed))

	all, err := storage.ListSessions(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	terminal := true
	terminals, err := storage.ListSessions(ctx, &interfaces.SessionListOptions{Terminal: &terminal})
	require.NoError(t, err)
	assert.Len(t, terminals, 2)

	errored, err := storage.ListSessions(ctx, &interfaces.SessionListOptions{Stage: models.StageError})
	require.NoError(t, err)
	require.Len(t, errored, 1)
	assert.Equal(t, "demo_failed", errored[0].ID)

	limited, err := storage.ListSessions(ctx, &interfaces.SessionListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSessionStorage_DeleteSession(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	session := models.NewDemoSession("demo_3", "https://github.com/acme/shop", "prompt", "")
	require.NoError(t, storage.SaveSession(ctx, session))
	require.NoError(t, storage.DeleteSession(ctx, "demo_3"))

	_, err := storage.GetSession(ctx, "demo_3")
	assert.Error(t, err)
	assert.Error(t, storage.DeleteSession(ctx, "demo_3"))
}

func TestSessionStorage_DeleteTerminalBefore(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	old := terminalSession("demo_old", models.StageCompleted, time.Now().Add(-48*time.Hour))
	require.NoError(t, storage.SaveSession(ctx, old))

	recent := terminalSession("demo_recent", models.StageCompleted, time.Now())
	require.NoError(t, storage.SaveSession(ctx, recent))

	live := models.NewDemoSession("demo_live", "https://github.com/acme/shop", "prompt", "")
	require.NoError(t, storage.SaveSession(ctx, live))

	deleted, err := storage.DeleteTerminalBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = storage.GetSession(ctx, "demo_old")
	assert.Error(t, err)

	_, err = storage.GetSession(ctx, "demo_recent")
	assert.NoError(t, err)
	_, err = storage.GetSession(ctx, "demo_live")
	assert.NoError(t, err)
}
