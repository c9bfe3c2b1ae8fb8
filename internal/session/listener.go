package session

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

// Listener consumes push row-change notifications for a single demo and
// forwards the status of each change through the same normalization path
// as the poller. It is purely reactive - no cadence of its own - and is
// the fast path for terminal detection, but it is not assumed reliable:
// if the subscription fails or the feed silently closes, no reconnection
// is attempted and the independently running poller carries the session
// to the correct terminal state.
type Listener struct {
	feed   interfaces.ChangeFeed
	rec    *Reconciler
	logger arbor.ILogger
}

// NewListener creates a listener for the given change feed and reconciler
func NewListener(feed interfaces.ChangeFeed, rec *Reconciler, logger arbor.ILogger) *Listener {
	return &Listener{
		feed:   feed,
		rec:    rec,
		logger: logger,
	}
}

// Run subscribes and forwards notifications until the context is cancelled,
// the reconciler signals shutdown, or the feed closes.
func (l *Listener) Run(ctx context.Context, demoID string) {
	changes, err := l.feed.Subscribe(ctx, demoID)
	if err != nil {
		l.logger.Warn().
			Err(err).
			Str("demo_id", demoID).
			Msg("Change feed subscription failed - falling back to polling only")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.rec.ShutdownSignal():
			return
		case change, ok := <-changes:
			if !ok {
				l.logger.Debug().Str("demo_id", demoID).Msg("Change feed closed")
				return
			}
			l.rec.Apply(models.Observation{
				Source:    models.SourcePush,
				RawStatus: change.New.Status,
				Message:   change.New.Description,
			})
		}
	}
}
