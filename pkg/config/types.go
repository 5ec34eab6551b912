package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	API         APIConfig        `mapstructure:"api"`
	Generation  GenerationConfig `mapstructure:"generation"`
	Server      ServerConfig     `mapstructure:"server"`
	Simulator   SimulatorConfig  `mapstructure:"simulator"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

// APIConfig contains settings for talking to the reel generation backend
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// GenerationConfig holds the defaults applied to new generation requests
type GenerationConfig struct {
	Language        string `mapstructure:"language"`
	Style           string `mapstructure:"style"`
	VoiceGender     string `mapstructure:"voice_gender"`
	Music           string `mapstructure:"music"`
	DurationSeconds int    `mapstructure:"duration_seconds"`
	AddSubtitles    bool   `mapstructure:"add_subtitles"`
}

// ServerConfig contains HTTP server settings for the simulated backend
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// SimulatorConfig controls the simulated generation backend
type SimulatorConfig struct {
	DatabasePath    string          `mapstructure:"database_path"`
	OutputDir       string          `mapstructure:"output_dir"`
	StepInterval    time.Duration   `mapstructure:"step_interval"`
	FailKeyword     string          `mapstructure:"fail_keyword"`
	FailMessage     string          `mapstructure:"fail_message"`
	Version         string          `mapstructure:"version"`
	JobRetention    time.Duration   `mapstructure:"job_retention"`
	CleanupInterval time.Duration   `mapstructure:"cleanup_interval"`
	APIs            map[string]bool `mapstructure:"apis"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig contains per-client rate limiting settings
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	RPS     int  `mapstructure:"rps"`
	Burst   int  `mapstructure:"burst"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
