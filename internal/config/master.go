package config

import (
	"fmt"
	"net/url"
	"os"
)

type AppConfig struct {
	DebugMode      bool
	ServicesConfig *ServicesConfig
	RealtimeConfig *RealtimeConfig
	StatusAPI      *StatusAPIConfig
	SessionConfig  *SessionConfig
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	LogConfig      *LogConfig
	Background     *BackgroundConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		ServicesConfig: NewServicesConfig(),
		RealtimeConfig: NewRealtimeConfig(),
		StatusAPI:      NewStatusAPIConfig(),
		SessionConfig:  NewSessionConfig(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		LogConfig:      NewLogConfig(),
		Background:     NewBackgroundConfig(),
	}
}

// Validate rejects configuration the client cannot start with.
func (c *AppConfig) Validate() error {
	for name, raw := range map[string]string{
		"PROBLEM_SERVICE_URL":    c.ServicesConfig.ProblemServiceURL,
		"SUBMISSION_SERVICE_URL": c.ServicesConfig.SubmissionServiceURL,
		"REALTIME_URL":           c.RealtimeConfig.URL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q", name, raw)
		}
	}
	if c.RealtimeConfig.ReconnectMax < c.RealtimeConfig.ReconnectMin {
		return fmt.Errorf("REALTIME_RECONNECT_MAX_MS must not be lower than REALTIME_RECONNECT_MIN_MS")
	}
	return nil
}
