package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

// DefaultBaseURL is the backend used when api.base_url is not configured
const DefaultBaseURL = "http://localhost:8000/api"

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		initErr = load("./config/settings.yaml")
	})

	return initErr
}

func load(configPath string) error {
	// A .env file is optional; values already in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	setDefaults()

	viper.SetEnvPrefix("REELGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configPath = filepath.Clean(configPath)
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		// If the config file doesn't exist, just use defaults and env vars
		if !errors.Is(err, fs.ErrNotExist) && !os.IsNotExist(err) {
			return fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	if err := validateBaseURL(viper.GetString("api.base_url")); err != nil {
		return err
	}

	if err := validatePort(viper.GetInt("server.port")); err != nil {
		return err
	}

	// Auto-correct a non-positive poll interval
	if viper.GetDuration("api.poll_interval") <= 0 {
		viper.Set("api.poll_interval", 2*time.Second)
	}

	if viper.GetDuration("simulator.step_interval") <= 0 {
		viper.Set("simulator.step_interval", time.Second)
	}

	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return apperrors.ConfigError("api.base_url", "is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.ConfigError("api.base_url", fmt.Sprintf("%q is not an absolute URL", raw))
	}
	return nil
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return apperrors.ConfigError("server.port", fmt.Sprintf("%d is out of range", port))
	}
	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if err := validateBaseURL(c.API.BaseURL); err != nil {
		return err
	}

	if err := validatePort(c.Server.Port); err != nil {
		return err
	}

	if c.API.PollInterval <= 0 {
		c.API.PollInterval = 2 * time.Second
	}

	if c.Simulator.StepInterval <= 0 {
		c.Simulator.StepInterval = time.Second
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Backend API defaults
	viper.SetDefault("api.base_url", DefaultBaseURL)
	viper.SetDefault("api.timeout", 5*time.Minute)
	viper.SetDefault("api.poll_interval", 2*time.Second)
	viper.SetDefault("api.user_agent", "reelgen/1.0")
	viper.SetDefault("api.requests_per_second", 0)

	// Request defaults
	viper.SetDefault("generation.language", "es")
	viper.SetDefault("generation.style", "vibrant")
	viper.SetDefault("generation.voice_gender", "female")
	viper.SetDefault("generation.music", "upbeat")
	viper.SetDefault("generation.duration_seconds", 30)
	viper.SetDefault("generation.add_subtitles", true)

	// Simulated backend server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Simulator defaults
	viper.SetDefault("simulator.database_path", "./data/reelgen.db")
	viper.SetDefault("simulator.output_dir", "./data/output")
	viper.SetDefault("simulator.step_interval", time.Second)
	viper.SetDefault("simulator.job_retention", 24*time.Hour)
	viper.SetDefault("simulator.cleanup_interval", time.Hour)
	viper.SetDefault("simulator.fail_keyword", "")
	viper.SetDefault("simulator.fail_message", "image provider quota exceeded")
	viper.SetDefault("simulator.version", "1.0.0")
	viper.SetDefault("simulator.apis", map[string]bool{
		"openai":     true,
		"elevenlabs": false,
		"stability":  false,
		"pexels":     false,
	})
	viper.SetDefault("simulator.rate_limit.enabled", true)
	viper.SetDefault("simulator.rate_limit.rps", 20)
	viper.SetDefault("simulator.rate_limit.burst", 40)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}
