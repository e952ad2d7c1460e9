package config

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func NewLogConfig() *LogConfig {
	return &LogConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  getIntEnv("LOG_MAX_SIZE_MB", 50),
		MaxBackups: getIntEnv("LOG_MAX_BACKUPS", 10),
		MaxAgeDays: getIntEnv("LOG_MAX_AGE_DAYS", 28),
	}
}
