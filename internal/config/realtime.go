package config

import "time"

type RealtimeConfig struct {
	URL          string
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	// ReconnectAttempts caps consecutive failed attempts; zero retries forever.
	ReconnectAttempts int
	HandshakeTimeout  time.Duration
}

func NewRealtimeConfig() *RealtimeConfig {
	return &RealtimeConfig{
		URL:               getEnv("REALTIME_URL", "http://localhost:3002"),
		ReconnectMin:      getMillisEnv("REALTIME_RECONNECT_MIN_MS", time.Second),
		ReconnectMax:      getMillisEnv("REALTIME_RECONNECT_MAX_MS", 5*time.Second),
		ReconnectAttempts: getIntEnv("REALTIME_RECONNECT_ATTEMPTS", 0),
		HandshakeTimeout:  getSecondsEnv("REALTIME_HANDSHAKE_TIMEOUT_SEC", 20*time.Second),
	}
}
