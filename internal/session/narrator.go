// -----------------------------------------------------------------------
// Narrative Synthesizer - Synthetic activity log for perceived liveness
// -----------------------------------------------------------------------

package session

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

type narrativeStep struct {
	kind models.LogKind
	text string
}

// narrativeScript is the fixed, ordered script played one step per tick
// while the session is live. The backend emits no per-action telemetry, so
// this is what keeps the log pane moving. The script cycles when exhausted.
var narrativeScript = []narrativeStep{
	{models.LogKindReasoning, "Analyzing repository structure and framework conventions"},
	{models.LogKindAction, "Cloning the repository into an isolated sandbox"},
	{models.LogKindVerification, "Confirming the dev server responds on its preview URL"},
	{models.LogKindMilestone, "Sandbox environment ready"},
	{models.LogKindReasoning, "Identifying the user flows worth showcasing"},
	{models.LogKindAction, "Mapping interactive elements on the landing page"},
	{models.LogKindVerification, "Validating navigation selectors against the live DOM"},
	{models.LogKindMilestone, "Demo script outline locked in"},
	{models.LogKindReasoning, "Prioritizing features by visual impact"},
	{models.LogKindAction, "Walking through the primary user flow"},
	{models.LogKindVerification, "Checking each step completed without console errors"},
	{models.LogKindMilestone, "Core flow captured on video"},
	{models.LogKindReasoning, "Scanning for secondary features to highlight"},
	{models.LogKindAction, "Exercising form inputs and page transitions"},
	{models.LogKindVerification, "Reviewing captured frames for timing gaps"},
	{models.LogKindMilestone, "Supplementary footage recorded"},
}

// Narrator emits the synthetic narrative on a fixed cadence. Shutdown is
// enforced twice: the run loop exits on the reconciler's shutdown signal
// (timer cancelled), and AppendNarrative itself refuses writes once the
// session is terminal - so a tick that raced the terminal transition still
// cannot land an entry.
type Narrator struct {
	rec      *Reconciler
	interval time.Duration
	script   []narrativeStep
	logger   arbor.ILogger
}

// NewNarrator creates a narrator bound to the reconciler
func NewNarrator(rec *Reconciler, interval time.Duration, logger arbor.ILogger) *Narrator {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Narrator{
		rec:      rec,
		interval: interval,
		script:   narrativeScript,
		logger:   logger,
	}
}

// Run plays the script one step per tick until cancelled or shut down
func (n *Narrator) Run(ctx context.Context) {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.rec.ShutdownSignal():
			return
		case <-ticker.C:
			s := n.script[step%len(n.script)]
			if !n.rec.AppendNarrative(s.kind, s.text) {
				return
			}
			step++
		}
	}
}
