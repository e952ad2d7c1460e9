package config

// PostgresConfig is optional. With an empty Url no history is recorded.
type PostgresConfig struct {
	Url    string
	Schema string
}

func NewPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Url:    getEnv("DATABASE_URL", ""),
		Schema: getEnv("DATABASE_SCHEMA", "public"),
	}
}
