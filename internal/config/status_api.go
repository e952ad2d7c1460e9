package config

type StatusAPIConfig struct {
	// Addr of the local status API. Empty disables it.
	Addr string
	// Token, when set, must be sent as a bearer token on every route except health.
	Token string
}

func NewStatusAPIConfig() *StatusAPIConfig {
	return &StatusAPIConfig{
		Addr:  getEnv("STATUS_API_ADDR", ""),
		Token: getEnv("STATUS_API_TOKEN", ""),
	}
}
