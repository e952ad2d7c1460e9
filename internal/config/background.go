package config

import "time"

// BackgroundConfig drives the periodic tasks of the watch process.
type BackgroundConfig struct {
	ConnectionPollInterval time.Duration
	// HistorySyncInterval of zero disables the periodic history sync.
	HistorySyncInterval time.Duration
	SyncWorkers         int
}

func NewBackgroundConfig() *BackgroundConfig {
	workers := getIntEnv("HISTORY_SYNC_WORKERS", 2)
	if workers <= 0 {
		workers = 2
	}
	return &BackgroundConfig{
		ConnectionPollInterval: getSecondsEnv("CONNECTION_POLL_SEC", 10*time.Second),
		HistorySyncInterval:    getSecondsEnv("HISTORY_SYNC_SEC", 0),
		SyncWorkers:            workers,
	}
}
