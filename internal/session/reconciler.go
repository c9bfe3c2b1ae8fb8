// -----------------------------------------------------------------------
// Session Reconciler - Single writer merging poll and push observations
// -----------------------------------------------------------------------

package session

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

// UpdateFunc is invoked after every session mutation with a snapshot of the
// session and the log entry appended by the mutation (nil if none).
// It runs outside the reconciler lock; implementations must not call back
// into the reconciler's write methods. Invocations from different
// components can interleave, so consumers order snapshots by Revision.
type UpdateFunc func(snapshot *models.DemoSession, entry *models.LogEntry)

// stageAnnouncements are the stage-transition log texts. Only stages listed
// here produce a log entry, and only on the first transition into the stage;
// repeated observations of the same stage from either source are progress
// heartbeats, not log events.
var stageAnnouncements = map[models.Stage]string{
	models.StageBuilding: "Setting up the project sandbox and building the app",
	models.StagePlanning: "Generating the demo execution plan",
}

// Reconciler is the sole writer of a DemoSession. It merges stage
// observations from the status poller and the push listener into one
// monotonically advancing view, and owns the one-shot shutdown signal that
// releases the poller, listener and narrator when the session ends.
//
// The merge is idempotent: the final session state is invariant under
// reordering and duplication of observations. Progress never decreases,
// the terminal transition fires exactly once (first observer wins), and no
// log entry is appended after the terminal transition.
type Reconciler struct {
	mu      sync.Mutex
	session *models.DemoSession
	halted  bool // early cancellation: stop accepting writes without going terminal

	shutdownOnce sync.Once
	shutdown     chan struct{}

	onUpdate UpdateFunc
	logger   arbor.ILogger
}

// NewReconciler creates a reconciler owning the given session
func NewReconciler(session *models.DemoSession, logger arbor.ILogger) *Reconciler {
	return &Reconciler{
		session:  session,
		shutdown: make(chan struct{}),
		logger:   logger,
	}
}

// OnUpdate registers the update hook. Must be called before any component
// starts feeding observations.
func (r *Reconciler) OnUpdate(fn UpdateFunc) {
	r.onUpdate = fn
}

// ShutdownSignal returns a channel closed exactly once, when the session
// reaches a terminal stage or is cancelled early. Poller, listener and
// narrator all select on it.
func (r *Reconciler) ShutdownSignal() <-chan struct{} {
	return r.shutdown
}

// Snapshot returns a deep copy of the session safe for concurrent readers
func (r *Reconciler) Snapshot() *models.DemoSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Clone()
}

// Apply merges one raw status observation into the session.
//
//  1. Terminal or halted sessions discard the observation unconditionally.
//  2. Unrecognized status strings are ignored (forward compatibility).
//  3. Progress = max(current, stage floor) - never regresses.
//  4. Terminal stages flip Terminal once, record ErrorDetail for errors,
//     append the terminal log entry and fire the shutdown signal.
//  5. Non-terminal stages advance the stage (stale lower-rank observations
//     are discarded) and log only the first transition into a stage.
func (r *Reconciler) Apply(obs models.Observation) {
	r.mu.Lock()

	if r.session.Terminal || r.halted {
		r.mu.Unlock()
		return
	}

	stage, ok := NormalizeStatus(obs.RawStatus)
	if !ok {
		r.mu.Unlock()
		r.logger.Debug().
			Str("demo_id", r.session.ID).
			Str("source", string(obs.Source)).
			Str("status", obs.RawStatus).
			Msg("Ignoring unrecognized backend status")
		return
	}

	if stage.IsTerminal() {
		r.terminalLocked(stage, obs.Message)
		return
	}

	if stageRank(stage) < stageRank(r.session.Stage) {
		// Stale observation from the slower source; the view never moves backwards
		r.mu.Unlock()
		return
	}

	now := time.Now()
	if floor := progressFloor(stage, r.session.Progress); floor > r.session.Progress {
		r.session.Progress = floor
	}

	var entry *models.LogEntry
	if stage != r.session.Stage {
		r.session.Stage = stage
		if text, announce := stageAnnouncements[stage]; announce {
			entry = r.appendLocked(models.LogKindAction, text, now)
			r.session.CurrentAction = text
		}
	}
	r.session.UpdatedAt = now
	r.session.Revision++
	snapshot := r.session.Clone()
	r.mu.Unlock()

	r.notify(snapshot, entry)
}

// Fail forces the session into the terminal error state. Used by the
// controller when job creation itself fails, before any component started.
func (r *Reconciler) Fail(detail string) {
	r.mu.Lock()
	if r.session.Terminal || r.halted {
		r.mu.Unlock()
		return
	}
	r.terminalLocked(models.StageError, detail)
}

// terminalLocked performs the single terminal transition. The caller must
// hold the lock; it is released here so the shutdown signal and update hook
// fire outside it.
func (r *Reconciler) terminalLocked(stage models.Stage, message string) {
	now := time.Now()
	r.session.Stage = stage
	r.session.Terminal = true
	r.session.TerminalAt = &now
	if floor := progressFloor(stage, r.session.Progress); floor > r.session.Progress {
		r.session.Progress = floor
	}

	var entry *models.LogEntry
	if stage == models.StageError {
		detail := message
		if detail == "" {
			detail = "demo generation failed"
		}
		r.session.ErrorDetail = detail
		entry = r.appendLocked(models.LogKindError, "Generation failed: "+detail, now)
	} else {
		entry = r.appendLocked(models.LogKindVerification, "Demo video generation complete", now)
	}
	r.session.UpdatedAt = now
	r.session.Revision++
	snapshot := r.session.Clone()
	r.mu.Unlock()

	r.shutdownOnce.Do(func() { close(r.shutdown) })
	r.logger.Info().
		Str("demo_id", snapshot.ID).
		Str("stage", string(stage)).
		Int("progress", snapshot.Progress).
		Msg("Session reached terminal stage")

	r.notify(snapshot, entry)
}

// AppendNarrative appends a synthetic narrative entry. Returns false when
// the session is terminal or halted - the narrator's second line of defense
// against a timer tick racing the terminal transition.
func (r *Reconciler) AppendNarrative(kind models.LogKind, text string) bool {
	r.mu.Lock()
	if r.session.Terminal || r.halted {
		r.mu.Unlock()
		return false
	}

	now := time.Now()
	entry := r.appendLocked(kind, text, now)
	if kind == models.LogKindAction {
		r.session.CurrentAction = text
	}
	r.session.UpdatedAt = now
	r.session.Revision++
	snapshot := r.session.Clone()
	r.mu.Unlock()

	r.notify(snapshot, entry)
	return true
}

// Halt stops the session without a terminal transition (owning view was
// dismissed early). Releases all components via the shutdown signal; no
// further log entries are emitted.
func (r *Reconciler) Halt() {
	r.mu.Lock()
	alreadyDone := r.session.Terminal || r.halted
	r.halted = true
	r.mu.Unlock()

	r.shutdownOnce.Do(func() { close(r.shutdown) })

	if !alreadyDone {
		r.logger.Debug().Str("demo_id", r.session.ID).Msg("Session monitoring cancelled before terminal stage")
	}
}

// appendLocked appends a log entry and maintains the milestone counter.
// Caller must hold the lock.
func (r *Reconciler) appendLocked(kind models.LogKind, text string, now time.Time) *models.LogEntry {
	entry := models.LogEntry{Kind: kind, Text: text, Timestamp: now}
	r.session.Logs = append(r.session.Logs, entry)
	if kind == models.LogKindMilestone {
		r.session.MilestoneCount++
	}
	return &entry
}

func (r *Reconciler) notify(snapshot *models.DemoSession, entry *models.LogEntry) {
	if r.onUpdate != nil {
		r.onUpdate(snapshot, entry)
	}
}
