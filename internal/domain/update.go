package domain

// Progress is the optional completed / total counter some payloads carry.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// UpdatePayload is the partial submission state pushed over the real-time channel.
type UpdatePayload struct {
	Status      SubmissionStatus `json:"status"`
	Results     []TestOutcome    `json:"results,omitempty"`
	Percentage  *float64         `json:"percentage,omitempty"`
	PassedCount *int             `json:"passedCount,omitempty"`
	TotalCount  *int             `json:"totalCount,omitempty"`
	Progress    *Progress        `json:"progress,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// UpdateEvent is one submission_update message.
type UpdateEvent struct {
	SubmissionID string        `json:"submissionId"`
	Data         UpdatePayload `json:"data"`
}
