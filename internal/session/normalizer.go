package session

import (
	"strings"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
)

// NormalizeStatus maps a raw backend status string to a canonical Stage.
// Matching is case-insensitive against the fixed stage table. Unknown
// values return ok=false and must be treated as a no-op by callers: the
// backend's vocabulary can grow ahead of this service, and an unrecognized
// status must never crash the monitor or regress progress.
func NormalizeStatus(raw string) (models.Stage, bool) {
	stage := models.Stage(strings.ToLower(strings.TrimSpace(raw)))
	if models.IsValidStage(stage) {
		return stage, true
	}
	return "", false
}

// progressFloor returns the minimum progress implied by observing a stage,
// given the current progress. Executing has no fixed floor: each
// observation nudges the bar by 5 up to 85, a best-effort heartbeat for an
// indeterminate-length phase. Error leaves progress unchanged.
func progressFloor(stage models.Stage, current int) int {
	switch stage {
	case models.StagePending:
		return 15
	case models.StageBuilding:
		return 25
	case models.StagePlanning:
		return 40
	case models.StageExecuting:
		next := current + 5
		if next > 85 {
			next = 85
		}
		return next
	case models.StageRecording:
		return 90
	case models.StageCompleted:
		return 100
	default:
		return current
	}
}

// stageRank orders the non-terminal pipeline phases so that a stale
// observation (e.g. a delayed poll reporting "building" after the push
// listener already reported "planning") cannot move the view backwards.
func stageRank(stage models.Stage) int {
	switch stage {
	case models.StagePending:
		return 0
	case models.StageBuilding:
		return 1
	case models.StagePlanning:
		return 2
	case models.StageExecuting:
		return 3
	case models.StageRecording:
		return 4
	case models.StageCompleted, models.StageError:
		return 5
	default:
		return -1
	}
}
