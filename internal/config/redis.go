package config

import "time"

// RedisConfig is optional. With an empty Url views are kept in memory.
type RedisConfig struct {
	DB       int
	Url      string
	Password string
	ViewTTL  time.Duration
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:       getIntEnv("REDIS_DB", 0),
		Url:      getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		ViewTTL:  getSecondsEnv("REDIS_VIEW_TTL_SEC", 24*time.Hour),
	}
}
