package reconcile

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

var _ IReconciler = (*Reconciler)(nil)

// CreateNotificationID keys the indicator for a failed creation, which has no submission id yet.
const CreateNotificationID = "submission:create"

type Reconciler struct {
	mu sync.Mutex

	logger   primary.Logger
	notifier primary.Notifier
	now      func() time.Time

	observerMu sync.RWMutex
	observers  []ViewObserver

	problemID  string
	totalTests int

	view     domain.SubmissionView
	outcomes []domain.TestOutcome
	// detached blocks every update until the next Begin.
	detached bool

	channel primary.RealtimeChannel
	sub     primary.Subscription
}

type Option func(*Reconciler)

// WithClock replaces time.Now for view timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

func NewReconciler(logger primary.Logger, notifier primary.Notifier, options ...Option) *Reconciler {
	r := &Reconciler{
		logger:   logger,
		notifier: notifier,
		now:      time.Now,
	}
	for _, option := range options {
		option(r)
	}
	r.view = r.idleView()
	return r
}

func (r *Reconciler) idleView() domain.SubmissionView {
	return domain.SubmissionView{
		ProblemID: r.problemID,
		State:     domain.ViewIdle,
		Outcomes:  []domain.OutcomeView{},
		UpdatedAt: r.now(),
	}
}

// SetProblem records the problem being worked on and its test case count. A count of zero
// means unknown.
func (r *Reconciler) SetProblem(problemID string, totalTests int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if totalTests < 0 {
		totalTests = 0
	}
	r.problemID = problemID
	r.totalTests = totalTests
	if r.view.State == domain.ViewIdle {
		r.view.ProblemID = problemID
	}
}

// Begin starts tracking a freshly created submission. Any previously tracked id becomes stale.
func (r *Reconciler) Begin(submission *domain.Submission) error {
	if submission == nil || submission.ID == "" {
		return errs.ErrMissingSubmissionID
	}

	r.mu.Lock()
	problemID := submission.ProblemID
	if problemID == "" {
		problemID = r.problemID
	}
	r.outcomes = nil
	r.detached = false
	r.view = domain.SubmissionView{
		SubmissionID: submission.ID,
		ProblemID:    problemID,
		Language:     submission.Language,
		State:        domain.ViewSubmitted,
		RawStatus:    domain.StatusPending,
		Outcomes:     []domain.OutcomeView{},
		UpdatedAt:    r.now(),
	}
	view := r.view.Clone()
	r.mu.Unlock()

	r.logger.Info("Tracking submission", "submissionId", submission.ID, "problemId", problemID)
	r.notifier.Dismiss(CreateNotificationID)
	r.notifier.Notify(notificationFor(view))
	r.publish(view)
	return nil
}

// CreationFailed surfaces a failed createSubmission call. The view is left untouched.
func (r *Reconciler) CreationFailed(err error) {
	r.logger.Error("Failed to create submission", "error", err)
	msg := "Failed to create submission"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	r.notifier.Notify(domain.Notification{
		ID:        CreateNotificationID,
		Kind:      domain.NotifyError,
		Message:   msg,
		UpdatedAt: r.now(),
	})
}

// Handle adapts HandleUpdate to the real-time callback signature.
func (r *Reconciler) Handle(event domain.UpdateEvent) {
	r.HandleUpdate(event.SubmissionID, event.Data)
}

// HandleUpdate folds one update into the view. It reports whether the view changed.
func (r *Reconciler) HandleUpdate(submissionID string, payload domain.UpdatePayload) bool {
	r.mu.Lock()
	if r.detached || r.view.SubmissionID == "" || submissionID != r.view.SubmissionID {
		r.mu.Unlock()
		return false
	}
	if r.view.State.Terminal() {
		r.mu.Unlock()
		r.logger.Debug("Ignoring update after terminal state", "submissionId", submissionID, "status", payload.Status)
		return false
	}

	outcomes := mergeOutcomes(r.outcomes, payload.Results, r.capacity(payload))

	next := r.view.Clone()
	if state, ok := stateForStatus(payload.Status); ok {
		if rank(state) >= rank(next.State) {
			next.State = state
			next.RawStatus = payload.Status
		}
	} else if payload.Status != "" {
		r.logger.Warn("Unknown submission status", "submissionId", submissionID, "status", payload.Status)
	}
	if payload.Progress != nil {
		p := *payload.Progress
		next.Progress = &p
	}
	if payload.Error != "" {
		next.Error = payload.Error
	}
	next.Outcomes = outcomeViews(outcomes, next.State.Terminal())
	next.Score = deriveScore(payload, outcomes, next.State, r.totalTests, next.Score)

	next.UpdatedAt = r.view.UpdatedAt
	if reflect.DeepEqual(next, r.view) {
		r.mu.Unlock()
		return false
	}
	next.UpdatedAt = r.now()
	r.outcomes = outcomes
	r.view = next
	view := next.Clone()
	r.mu.Unlock()

	if view.State.Terminal() {
		r.logger.Info("Submission finished", "submissionId", submissionID, "state", view.State, "status", view.RawStatus)
	}
	r.notifier.Notify(notificationFor(view))
	r.publish(view)
	return true
}

// capacity is the most outcomes a view may hold. Zero means no known bound.
func (r *Reconciler) capacity(payload domain.UpdatePayload) int {
	if r.totalTests > 0 {
		return r.totalTests
	}
	if payload.TotalCount != nil && *payload.TotalCount > 0 {
		return *payload.TotalCount
	}
	return 0
}

// Attach subscribes the reconciler to the channel. A previous subscription is dropped first.
func (r *Reconciler) Attach(channel primary.RealtimeChannel) {
	r.Detach()
	sub := channel.Subscribe(r.Handle)

	r.mu.Lock()
	r.channel = channel
	r.sub = sub
	r.detached = false
	r.mu.Unlock()
}

// Detach unsubscribes from the channel. Updates arriving afterwards never touch the view.
func (r *Reconciler) Detach() {
	r.mu.Lock()
	channel, sub := r.channel, r.sub
	r.channel, r.sub = nil, ""
	r.detached = true
	r.mu.Unlock()

	if channel != nil && sub != "" {
		channel.Unsubscribe(sub)
	}
}

// Reset detaches and returns to Idle, dismissing the indicator of the abandoned submission.
func (r *Reconciler) Reset() {
	r.Detach()

	r.mu.Lock()
	previous := r.view.SubmissionID
	r.outcomes = nil
	r.view = r.idleView()
	view := r.view.Clone()
	r.mu.Unlock()

	if previous != "" {
		r.notifier.Dismiss(previous)
	}
	r.publish(view)
}

func (r *Reconciler) View() domain.SubmissionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.Clone()
}

func (r *Reconciler) Observe(o ViewObserver) {
	r.observerMu.Lock()
	defer r.observerMu.Unlock()
	r.observers = append(r.observers, o)
}

func (r *Reconciler) publish(view domain.SubmissionView) {
	r.observerMu.RLock()
	observers := append([]ViewObserver(nil), r.observers...)
	r.observerMu.RUnlock()

	for _, o := range observers {
		o(view.Clone())
	}
}
