package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestNarrator_EmitsScriptEntries(t *testing.T) {
	rec := newTestReconciler(t)
	n := NewNarrator(rec, 5*time.Millisecond, arbor.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(rec.Snapshot().Logs) >= 4
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	// Entries follow the script order from the beginning
	snap := rec.Snapshot()
	for i, entry := range snap.Logs {
		step := narrativeScript[i%len(narrativeScript)]
		assert.Equal(t, step.kind, entry.Kind, "entry %d", i)
		assert.Equal(t, step.text, entry.Text, "entry %d", i)
	}
}

func TestNarrator_SilentAfterTerminal(t *testing.T) {
	rec := newTestReconciler(t)
	n := NewNarrator(rec, 2*time.Millisecond, arbor.NewLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Run(context.Background())
	}()

	require.Eventually(t, func() bool {
		return len(rec.Snapshot().Logs) >= 2
	}, time.Second, time.Millisecond)

	rec.Apply(poll("completed"))
	logCount := len(rec.Snapshot().Logs)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("narrator did not stop after terminal transition")
	}

	// No narrative entry lands after the terminal log
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, logCount, len(rec.Snapshot().Logs))
}
