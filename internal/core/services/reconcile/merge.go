package reconcile

import (
	"math"

	"gitlab.com/codearena.net/internal/domain"
)

// stateForStatus maps a backend status onto the display state machine. Pending keeps the
// optimistic Submitted state.
func stateForStatus(status domain.SubmissionStatus) (domain.ViewState, bool) {
	switch status {
	case domain.StatusPending:
		return domain.ViewSubmitted, true
	case domain.StatusRunning:
		return domain.ViewRunning, true
	case domain.StatusSuccess:
		return domain.ViewSuccess, true
	case domain.StatusWA:
		return domain.ViewWrongAnswer, true
	case domain.StatusRE, domain.StatusTLE, domain.StatusMLE:
		return domain.ViewRuntimeError, true
	case domain.StatusFailed:
		return domain.ViewFailed, true
	}
	return "", false
}

func rank(s domain.ViewState) int {
	switch s {
	case domain.ViewIdle:
		return 0
	case domain.ViewSubmitted:
		return 1
	case domain.ViewRunning:
		return 2
	}
	return 3
}

// mergeOutcomes applies a results snapshot. A list at least as long as the current one replaces
// it. A shorter list only overwrites the positions it covers so outcomes are never removed.
// The result is capped at limit when limit is positive.
func mergeOutcomes(current, incoming []domain.TestOutcome, limit int) []domain.TestOutcome {
	var merged []domain.TestOutcome
	switch {
	case incoming == nil:
		merged = append([]domain.TestOutcome(nil), current...)
	case len(incoming) >= len(current):
		merged = append([]domain.TestOutcome(nil), incoming...)
	default:
		merged = append([]domain.TestOutcome(nil), current...)
		copy(merged, incoming)
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func outcomeViews(outcomes []domain.TestOutcome, terminal bool) []domain.OutcomeView {
	views := make([]domain.OutcomeView, 0, len(outcomes))
	for i, o := range outcomes {
		state := domain.OutcomeFailed
		switch {
		case o.Passed:
			state = domain.OutcomePassed
		case o.Unpopulated() && !terminal:
			state = domain.OutcomeInProgress
		}
		var ms *int64
		if o.ExecutionTimeMs != nil {
			v := *o.ExecutionTimeMs
			ms = &v
		}
		views = append(views, domain.OutcomeView{
			Index:    i + 1,
			State:    state,
			Input:    o.TestCase.Input,
			Expected: o.TestCase.Output,
			Actual:   o.Output,
			Error:    o.Error,
			TimeMs:   ms,
		})
	}
	return views
}

// deriveScore picks the score for the view. Reported counts win over a reported percentage,
// which wins over counting outcomes. A payload with nothing to count keeps the previous score.
func deriveScore(
	payload domain.UpdatePayload,
	outcomes []domain.TestOutcome,
	state domain.ViewState,
	problemTotal int,
	previous *domain.Score,
) *domain.Score {
	passed := 0
	for _, o := range outcomes {
		if o.Passed {
			passed++
		}
	}
	total := len(outcomes)
	if state.Terminal() && problemTotal > 0 {
		total = problemTotal
	}

	reported := payload.PassedCount != nil || payload.TotalCount != nil || payload.Percentage != nil
	if !reported && len(outcomes) == 0 && previous != nil {
		return previous
	}
	if payload.PassedCount != nil {
		passed = *payload.PassedCount
	}
	if payload.TotalCount != nil {
		total = *payload.TotalCount
	}

	switch {
	case payload.PassedCount != nil && payload.TotalCount != nil:
		return &domain.Score{Passed: passed, Total: total, Percentage: percentOf(passed, total)}
	case payload.Percentage != nil:
		return &domain.Score{Passed: passed, Total: total, Percentage: roundPercent(*payload.Percentage)}
	}

	if total == 0 && !state.Terminal() {
		return nil
	}
	return &domain.Score{Passed: passed, Total: total, Percentage: percentOf(passed, total)}
}

func percentOf(passed, total int) int {
	if total <= 0 {
		return 0
	}
	return roundPercent(100 * float64(passed) / float64(total))
}

// roundPercent rounds half away from zero and clamps to [0, 100].
func roundPercent(p float64) int {
	if math.IsNaN(p) {
		return 0
	}
	v := int(math.Round(p))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
