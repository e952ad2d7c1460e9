package config

import "time"

type ServicesConfig struct {
	ProblemServiceURL    string
	SubmissionServiceURL string
	RequestTimeout       time.Duration
}

func NewServicesConfig() *ServicesConfig {
	return &ServicesConfig{
		ProblemServiceURL:    getEnv("PROBLEM_SERVICE_URL", "http://localhost:3000/api"),
		SubmissionServiceURL: getEnv("SUBMISSION_SERVICE_URL", "http://localhost:3001/api"),
		RequestTimeout:       getSecondsEnv("REQUEST_TIMEOUT_SEC", 30*time.Second),
	}
}
