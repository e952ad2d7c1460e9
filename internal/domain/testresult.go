package domain

// TestOutcome represents the result of running submitted code against one test case
type TestOutcome struct {
	TestCase        TestCase `json:"testcase"`
	Output          string   `json:"output"`
	Passed          bool     `json:"passed"`
	Error           string   `json:"error,omitempty"`
	ExecutionTimeMs *int64   `json:"executionTime,omitempty"`
}

// Unpopulated reports whether the backend announced the test without a result yet.
func (o TestOutcome) Unpopulated() bool {
	return !o.Passed && o.Output == "" && o.Error == ""
}
