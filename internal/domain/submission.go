package domain

import "time"

// SubmissionStatus is the lifecycle status reported by the submission service.
type SubmissionStatus string

const (
	StatusPending SubmissionStatus = "Pending"
	StatusRunning SubmissionStatus = "Running"
	StatusSuccess SubmissionStatus = "Success"
	StatusWA      SubmissionStatus = "WA"
	StatusRE      SubmissionStatus = "RE"
	StatusTLE     SubmissionStatus = "TLE"
	StatusMLE     SubmissionStatus = "MLE"
	StatusFailed  SubmissionStatus = "Failed"
)

// Submission represents a code submission as stored by the submission service
type Submission struct {
	ID          string           `json:"_id"`
	UserID      string           `json:"userId"`
	ProblemID   string           `json:"problemId"`
	Code        string           `json:"code"`
	Language    Language         `json:"language"`
	Status      SubmissionStatus `json:"status"`
	Percentage  *float64         `json:"percentage,omitempty"`
	PassedCount *int             `json:"passedCount,omitempty"`
	TotalCount  *int             `json:"totalCount,omitempty"`
	Results     []TestOutcome    `json:"results,omitempty"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
}

type CreateSubmissionRequest struct {
	ProblemID string   `json:"problemId" validate:"required"`
	Code      string   `json:"code" validate:"required"`
	Language  Language `json:"language" validate:"required,oneof=JAVA PYTHON CPP"`
}

// Payload restates the fetched submission as an update, so a view can start from it.
func (s Submission) Payload() UpdatePayload {
	return UpdatePayload{
		Status:      s.Status,
		Results:     s.Results,
		Percentage:  s.Percentage,
		PassedCount: s.PassedCount,
		TotalCount:  s.TotalCount,
	}
}
