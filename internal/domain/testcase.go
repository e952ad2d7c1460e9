package domain

// TestCase is one input / expected output pair of a problem.
type TestCase struct {
	ID     string `json:"_id"`
	Input  string `json:"input"`
	Output string `json:"output"`
}
