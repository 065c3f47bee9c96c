package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"LC_ENV" default:"development"`

	HTTPPort    int           `envconfig:"LC_HTTP_PORT" default:"8000"`
	HTTPTimeout time.Duration `envconfig:"LC_HTTP_TIMEOUT" default:"60s"`

	OutputDir string `envconfig:"LC_OUTPUT_DIR" default:"./output"`

	ChunkTimeout  time.Duration `envconfig:"LC_CHUNK_TIMEOUT" default:"30s"`
	ChunkRetries  int           `envconfig:"LC_CHUNK_RETRIES" default:"3"`
	ChunkDuration int           `envconfig:"LC_CHUNK_DURATION" default:"16"`

	FFmpegPath    string `envconfig:"LC_FFMPEG_PATH" default:"ffmpeg"`
	WhisperPath   string `envconfig:"LC_WHISPER_PATH" default:"whisper"`
	TesseractPath string `envconfig:"LC_TESSERACT_PATH" default:"tesseract"`

	WhisperModel  string `envconfig:"LC_WHISPER_MODEL" default:"turbo"`
	OllamaBaseURL string `envconfig:"LC_OLLAMA_BASE_URL" default:"http://localhost:11434"`
	OllamaModel   string `envconfig:"LC_OLLAMA_MODEL" default:"gpt-oss:20b"`

	HeavyOpSlots int `envconfig:"LC_HEAVY_OP_SLOTS" default:"2"`

	ShutdownTimeout time.Duration `envconfig:"LC_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"LC_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LC_LOG_FORMAT" default:"json"`
}

// VideoDir returns the directory downloaded videos are written under.
func (c *Config) VideoDir() string {
	return filepath.Join(c.OutputDir, "videos")
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	if c.ChunkRetries <= 0 {
		return fmt.Errorf("chunk retries must be positive: %d", c.ChunkRetries)
	}
	if c.ChunkDuration <= 0 {
		return fmt.Errorf("chunk duration must be positive: %d", c.ChunkDuration)
	}

	if c.HeavyOpSlots <= 0 {
		return fmt.Errorf("heavy op slots must be positive: %d", c.HeavyOpSlots)
	}

	if c.OllamaBaseURL == "" {
		return fmt.Errorf("ollama base URL cannot be empty")
	}

	return nil
}
