package session

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

// Poller reads the demo's status row on a fixed interval and forwards the
// raw status string to the reconciler. There is no backoff: a transport
// failure is transient, skipped silently and retried on the next tick. A
// failed poll never produces an error stage - only the backend reporting
// "error" does that.
type Poller struct {
	backend  interfaces.GenerationBackend
	rec      *Reconciler
	interval time.Duration
	logger   arbor.ILogger
}

// NewPoller creates a poller for the given backend and reconciler
func NewPoller(backend interfaces.GenerationBackend, rec *Reconciler, interval time.Duration, logger arbor.ILogger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		backend:  backend,
		rec:      rec,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until the context is cancelled or the reconciler signals
// shutdown. The first poll fires immediately so the UI sees a state
// without waiting a full interval.
func (p *Poller) Run(ctx context.Context, demoID string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx, demoID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.rec.ShutdownSignal():
			return
		case <-ticker.C:
			p.pollOnce(ctx, demoID)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context, demoID string) {
	status, err := p.backend.GetDemoStatus(ctx, demoID)
	if err != nil {
		// Transient; no state change, no log entry (avoids filling the
		// session log with network noise)
		p.logger.Debug().
			Err(err).
			Str("demo_id", demoID).
			Msg("Status poll failed - retrying next tick")
		return
	}

	p.rec.Apply(models.Observation{
		Source:    models.SourcePoll,
		RawStatus: status.Status,
		Message:   status.Description,
	})
}
