package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		HTTPPort:      8000,
		OutputDir:     "./output",
		ChunkRetries:  3,
		ChunkDuration: 16,
		HeavyOpSlots:  2,
		OllamaBaseURL: "http://localhost:11434",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.HTTPPort = 0 }},
		{"port too high", func(c *Config) { c.HTTPPort = 70000 }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
		{"zero retries", func(c *Config) { c.ChunkRetries = 0 }},
		{"zero chunk duration", func(c *Config) { c.ChunkDuration = 0 }},
		{"zero slots", func(c *Config) { c.HeavyOpSlots = 0 }},
		{"empty ollama url", func(c *Config) { c.OllamaBaseURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestVideoDir(t *testing.T) {
	cfg := &Config{OutputDir: "/data/output"}
	assert.Equal(t, filepath.Join("/data/output", "videos"), cfg.VideoDir())
}
