package domain

import "time"

// ViewState is the display state of the tracked submission.
type ViewState string

const (
	ViewIdle         ViewState = "Idle"
	ViewSubmitted    ViewState = "Submitted"
	ViewRunning      ViewState = "Running"
	ViewSuccess      ViewState = "Success"
	ViewWrongAnswer  ViewState = "WrongAnswer"
	ViewRuntimeError ViewState = "RuntimeError"
	ViewFailed       ViewState = "Failed"
)

// Terminal reports whether no further transitions are expected.
func (s ViewState) Terminal() bool {
	switch s {
	case ViewSuccess, ViewWrongAnswer, ViewRuntimeError, ViewFailed:
		return true
	}
	return false
}

// OutcomeState is how a single test outcome is shown.
type OutcomeState string

const (
	OutcomeInProgress OutcomeState = "RUNNING"
	OutcomePassed     OutcomeState = "PASSED"
	OutcomeFailed     OutcomeState = "FAILED"
)

type OutcomeView struct {
	Index    int          `json:"index"`
	State    OutcomeState `json:"state"`
	Input    string       `json:"input"`
	Expected string       `json:"expected"`
	Actual   string       `json:"actual"`
	Error    string       `json:"error,omitempty"`
	TimeMs   *int64       `json:"timeMs,omitempty"`
}

// Score is the aggregate shown next to the status.
type Score struct {
	Passed     int `json:"passed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// SubmissionView is the view model the reconciler maintains for one submission.
type SubmissionView struct {
	SubmissionID string           `json:"submissionId,omitempty"`
	ProblemID    string           `json:"problemId,omitempty"`
	Language     Language         `json:"language,omitempty"`
	State        ViewState        `json:"state"`
	RawStatus    SubmissionStatus `json:"rawStatus,omitempty"`
	Outcomes     []OutcomeView    `json:"outcomes"`
	Score        *Score           `json:"score,omitempty"`
	Progress     *Progress        `json:"progress,omitempty"`
	Error        string           `json:"error,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Evaluated counts outcomes that have a final verdict.
func (v SubmissionView) Evaluated() int {
	n := 0
	for _, o := range v.Outcomes {
		if o.State != OutcomeInProgress {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand out of the reconciler.
func (v SubmissionView) Clone() SubmissionView {
	c := v
	c.Outcomes = append([]OutcomeView(nil), v.Outcomes...)
	if c.Outcomes == nil {
		c.Outcomes = []OutcomeView{}
	}
	if v.Score != nil {
		s := *v.Score
		c.Score = &s
	}
	if v.Progress != nil {
		p := *v.Progress
		c.Progress = &p
	}
	return c
}
