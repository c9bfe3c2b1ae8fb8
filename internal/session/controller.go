// -----------------------------------------------------------------------
// Session Controller - Creates the job and wires the monitoring components
// -----------------------------------------------------------------------

package session

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/common"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

// CreateDemoRequest is the input for starting a generation session
type CreateDemoRequest struct {
	RepoURL string `json:"repo_url" validate:"required,url"`
	Prompt  string `json:"prompt" validate:"required,min=4"`
	Title   string `json:"title,omitempty" validate:"omitempty,max=200"`
}

// Monitor is the handle to one running (or already-terminal) session.
// Readers get consistent deep-copied snapshots; the owning view calls
// Cancel for early teardown.
type Monitor struct {
	rec    *Reconciler
	cancel context.CancelFunc
}

// ID returns the session's immutable identifier
func (m *Monitor) ID() string {
	return m.rec.Snapshot().ID
}

// Snapshot returns a read-only deep copy of the session
func (m *Monitor) Snapshot() *models.DemoSession {
	return m.rec.Snapshot()
}

// Done returns a channel closed when monitoring stops (terminal stage
// reached or cancelled early)
func (m *Monitor) Done() <-chan struct{} {
	return m.rec.ShutdownSignal()
}

// Cancel tears the session down before the terminal stage: poller interval,
// feed subscription and narrator timer are all released, and no further log
// entry is emitted.
func (m *Monitor) Cancel() {
	m.rec.Halt()
	m.cancel()
}

// Controller performs the single write-side effect of a session - the
// backend create call - and wires the poller, listener and narrator to the
// returned demo ID. All three share one cancellable context tied to the
// reconciler's shutdown signal, so the terminal transition releases every
// timer and subscription in one step.
type Controller struct {
	backend  interfaces.GenerationBackend
	feed     interfaces.ChangeFeed
	config   common.MonitorConfig
	onUpdate UpdateFunc
	logger   arbor.ILogger
}

// NewController creates a session controller
func NewController(backend interfaces.GenerationBackend, feed interfaces.ChangeFeed, config common.MonitorConfig, onUpdate UpdateFunc, logger arbor.ILogger) *Controller {
	return &Controller{
		backend:  backend,
		feed:     feed,
		config:   config,
		onUpdate: onUpdate,
		logger:   logger,
	}
}

// Start submits the generation request and returns the session monitor.
//
// Exactly one create call is made. On failure the returned monitor is
// already terminal with the failure message in ErrorDetail - no poller,
// listener or narrator is started and no timer is allocated. There is no
// retry; recovery is a fresh Start call.
func (c *Controller) Start(ctx context.Context, req CreateDemoRequest) *Monitor {
	result, err := c.backend.CreateDemo(ctx, req.RepoURL, req.Prompt, req.Title)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("repo_url", req.RepoURL).
			Msg("Demo creation failed")

		s := models.NewDemoSession(common.NewDemoID(), req.RepoURL, req.Prompt, req.Title)
		rec := NewReconciler(s, c.logger)
		rec.OnUpdate(c.onUpdate)
		rec.Fail(err.Error())
		return &Monitor{rec: rec, cancel: func() {}}
	}

	s := models.NewDemoSession(result.DemoID, req.RepoURL, req.Prompt, req.Title)
	rec := NewReconciler(s, c.logger)
	rec.OnUpdate(c.onUpdate)

	c.logger.Info().
		Str("demo_id", result.DemoID).
		Str("repo_url", req.RepoURL).
		Msg("Demo created - starting session monitor")

	// Seed the view from the create response so the UI shows the backend's
	// initial stage before the first poll lands
	if result.Status != "" {
		rec.Apply(models.Observation{Source: models.SourcePoll, RawStatus: result.Status, Message: result.Message})
	}

	// Monitoring outlives the request that started it
	runCtx, cancel := context.WithCancel(context.Background())
	m := &Monitor{rec: rec, cancel: cancel}

	poller := NewPoller(c.backend, rec, c.config.PollDuration(), c.logger)
	listener := NewListener(c.feed, rec, c.logger)
	narrator := NewNarrator(rec, c.config.NarrativeDuration(), c.logger)

	common.SafeGoWithContext(runCtx, c.logger, "poller:"+result.DemoID, func() {
		poller.Run(runCtx, result.DemoID)
	})
	common.SafeGoWithContext(runCtx, c.logger, "listener:"+result.DemoID, func() {
		listener.Run(runCtx, result.DemoID)
	})
	common.SafeGoWithContext(runCtx, c.logger, "narrator:"+result.DemoID, func() {
		narrator.Run(runCtx)
	})

	// Terminal transition cancels the shared context, releasing anything
	// still blocked on I/O rather than on the shutdown signal
	common.SafeGo(c.logger, "monitor-shutdown:"+result.DemoID, func() {
		<-rec.ShutdownSignal()
		cancel()
	})

	return m
}
