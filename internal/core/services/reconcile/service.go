package reconcile

import (
	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
)

// ViewObserver is called with a copy of the view after every change.
type ViewObserver func(view domain.SubmissionView)

// IReconciler tracks one active submission and folds its update events into a view model.
type IReconciler interface {
	SetProblem(problemID string, totalTests int)
	Begin(submission *domain.Submission) error
	CreationFailed(err error)
	HandleUpdate(submissionID string, payload domain.UpdatePayload) bool
	Attach(channel primary.RealtimeChannel)
	Detach()
	Reset()
	View() domain.SubmissionView
	Observe(o ViewObserver)
}
