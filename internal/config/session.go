package config

import (
	"os"
	"path/filepath"
)

type SessionConfig struct {
	File string
}

func NewSessionConfig() *SessionConfig {
	file := os.Getenv("SESSION_FILE")
	if file == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		file = filepath.Join(dir, "codearena", "session")
	}
	return &SessionConfig{File: file}
}
