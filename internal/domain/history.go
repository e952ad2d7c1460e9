package domain

import (
	"math"
	"time"
)

// HistoryEntry is a terminal submission view recorded locally.
type HistoryEntry struct {
	SubmissionID string    `db:"submission_id" json:"submissionId"`
	ProblemID    string    `db:"problem_id" json:"problemId"`
	Language     string    `db:"language" json:"language"`
	State        string    `db:"state" json:"state"`
	RawStatus    string    `db:"raw_status" json:"rawStatus"`
	Passed       int       `db:"passed" json:"passed"`
	Total        int       `db:"total" json:"total"`
	Percentage   int       `db:"percentage" json:"percentage"`
	ErrorText    string    `db:"error_text" json:"error,omitempty"`
	FinishedAt   time.Time `db:"finished_at" json:"finishedAt"`
}

type HistoryTable struct {
	SubmissionID string
	ProblemID    string
	Language     string
	State        string
	RawStatus    string
	Passed       string
	Total        string
	Percentage   string
	ErrorText    string
	FinishedAt   string
}

func GetHistoryTable() HistoryTable {
	return HistoryTable{
		SubmissionID: "submission_id",
		ProblemID:    "problem_id",
		Language:     "language",
		State:        "state",
		RawStatus:    "raw_status",
		Passed:       "passed",
		Total:        "total",
		Percentage:   "percentage",
		ErrorText:    "error_text",
		FinishedAt:   "finished_at",
	}
}

func (HistoryTable) TableName() string {
	return "submission_history"
}

// NewHistoryEntry builds the record for a terminal view.
func NewHistoryEntry(v SubmissionView) *HistoryEntry {
	e := &HistoryEntry{
		SubmissionID: v.SubmissionID,
		ProblemID:    v.ProblemID,
		Language:     string(v.Language),
		State:        string(v.State),
		RawStatus:    string(v.RawStatus),
		ErrorText:    v.Error,
		FinishedAt:   v.UpdatedAt,
	}
	if v.Score != nil {
		e.Passed = v.Score.Passed
		e.Total = v.Score.Total
		e.Percentage = v.Score.Percentage
	}
	return e
}

// HistoryEntryFromSubmission builds the record for a submission fetched from the service.
// It reports false while the submission is still pending or running.
func HistoryEntryFromSubmission(s Submission) (*HistoryEntry, bool) {
	var state ViewState
	switch s.Status {
	case StatusSuccess:
		state = ViewSuccess
	case StatusWA:
		state = ViewWrongAnswer
	case StatusRE, StatusTLE, StatusMLE:
		state = ViewRuntimeError
	case StatusFailed:
		state = ViewFailed
	default:
		return nil, false
	}

	e := &HistoryEntry{
		SubmissionID: s.ID,
		ProblemID:    s.ProblemID,
		Language:     string(s.Language),
		State:        string(state),
		RawStatus:    string(s.Status),
	}

	e.Total = len(s.Results)
	for _, r := range s.Results {
		if r.Passed {
			e.Passed++
		}
		if e.ErrorText == "" && r.Error != "" {
			e.ErrorText = r.Error
		}
	}
	if s.PassedCount != nil && s.TotalCount != nil {
		e.Passed, e.Total = *s.PassedCount, *s.TotalCount
	}
	switch {
	case s.Percentage != nil:
		e.Percentage = clampPercent(math.Round(*s.Percentage))
	case e.Total > 0:
		e.Percentage = clampPercent(math.Round(100 * float64(e.Passed) / float64(e.Total)))
	}

	switch {
	case s.UpdatedAt != nil:
		e.FinishedAt = *s.UpdatedAt
	case s.CreatedAt != nil:
		e.FinishedAt = *s.CreatedAt
	}
	return e, true
}

func clampPercent(p float64) int {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}
