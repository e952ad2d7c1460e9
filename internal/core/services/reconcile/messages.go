package reconcile

import (
	"fmt"

	"gitlab.com/codearena.net/internal/domain"
)

const failedFallback = "grading could not be completed"

// notificationFor renders the indicator for a view. Every message of one submission shares
// the submission id so they replace each other.
func notificationFor(v domain.SubmissionView) domain.Notification {
	n := domain.Notification{
		ID:        v.SubmissionID,
		UpdatedAt: v.UpdatedAt,
	}

	switch v.State {
	case domain.ViewSubmitted:
		n.Kind = domain.NotifyLoading
		n.Message = "Submission queued..."
	case domain.ViewRunning:
		n.Kind = domain.NotifyLoading
		n.Message = "Processing submission..."
		if done, total, ok := progressOf(v); ok {
			n.Message = fmt.Sprintf("Processing submission... %d/%d tests", done, total)
		}
	case domain.ViewSuccess:
		n.Kind = domain.NotifySuccess
		n.Message = "Submission completed successfully!"
	case domain.ViewFailed:
		n.Kind = domain.NotifyError
		reason := v.Error
		if reason == "" {
			reason = failedFallback
		}
		n.Message = "Submission failed: " + reason
	default:
		n.Kind = domain.NotifyError
		n.Message = fmt.Sprintf("Submission %s", v.RawStatus)
		if v.Score != nil {
			n.Message = fmt.Sprintf("%s (%d/%d passed, %d%%)", n.Message, v.Score.Passed, v.Score.Total, v.Score.Percentage)
		}
	}
	return n
}

func progressOf(v domain.SubmissionView) (int, int, bool) {
	if v.Progress != nil && v.Progress.Total > 0 {
		return v.Progress.Completed, v.Progress.Total, true
	}
	if len(v.Outcomes) > 0 {
		return v.Evaluated(), len(v.Outcomes), true
	}
	return 0, 0, false
}
