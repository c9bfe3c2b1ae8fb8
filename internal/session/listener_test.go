package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

func TestListener_ForwardsRowChanges(t *testing.T) {
	rec := newTestReconciler(t)
	feed := newFakeFeed()

	l := NewListener(feed, rec, arbor.NewLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(context.Background(), "demo_test")
	}()

	feed.push("recording")
	require.Eventually(t, func() bool {
		return rec.Snapshot().Stage == models.StageRecording
	}, time.Second, 5*time.Millisecond)

	// Terminal notification via push is the fast path
	feed.push("completed")
	require.Eventually(t, func() bool {
		return rec.Snapshot().Terminal
	}, time.Second, 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop after terminal transition")
	}
}

func TestListener_SubscribeFailureFallsBackToPolling(t *testing.T) {
	rec := newTestReconciler(t)
	feed := newFakeFeed()
	feed.subscribeErr = errors.New("realtime unavailable")

	l := NewListener(feed, rec, arbor.NewLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(context.Background(), "demo_test")
	}()

	// Subscription failure returns immediately and leaves state untouched
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not return after subscribe failure")
	}

	snap := rec.Snapshot()
	assert.Equal(t, models.StagePending, snap.Stage)
	assert.False(t, snap.Terminal)
}

func TestListener_FeedCloseStopsRun(t *testing.T) {
	rec := newTestReconciler(t)
	feed := newFakeFeed()

	l := NewListener(feed, rec, arbor.NewLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(context.Background(), "demo_test")
	}()

	close(feed.changes)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop when the feed closed")
	}
	assert.False(t, rec.Snapshot().Terminal, "a dropped feed must not end the session")
}
