package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name: "load from settings file",
			content: `
api:
  base_url: "http://backend.local:9000/api"
  poll_interval: 500ms
server:
  port: 9000
`,
			check: func(t *testing.T) {
				assert.Equal(t, "http://backend.local:9000/api", GetString("api.base_url"))
				assert.Equal(t, 500*time.Millisecond, GetDuration("api.poll_interval"))
				assert.Equal(t, 9000, GetInt("server.port"))
			},
		},
		{
			name: "environment variable override",
			content: `
api:
  base_url: "http://backend.local:9000/api"
`,
			env: map[string]string{"REELGEN_API_BASE_URL": "http://override:8000/api"},
			check: func(t *testing.T) {
				assert.Equal(t, "http://override:8000/api", GetString("api.base_url"))
			},
		},
		{
			name: "missing config file uses defaults",
			check: func(t *testing.T) {
				assert.Equal(t, "http://localhost:8000/api", GetString("api.base_url"))
				assert.Equal(t, 2*time.Second, GetDuration("api.poll_interval"))
				assert.Equal(t, 5*time.Minute, GetDuration("api.timeout"))
				assert.Equal(t, "es", GetString("generation.language"))
				assert.True(t, GetBool("generation.add_subtitles"))
			},
		},
		{
			name: "non-positive poll interval is corrected",
			content: `
api:
  poll_interval: 0s
`,
			check: func(t *testing.T) {
				assert.Equal(t, 2*time.Second, GetDuration("api.poll_interval"))
			},
		},
		{
			name: "invalid base url",
			content: `
api:
  base_url: "not a url"
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "settings.yaml")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			err := load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, load(filepath.Join(t.TempDir(), "missing.yaml")))

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Generation.DurationSeconds)
	assert.Equal(t, "vibrant", cfg.Generation.Style)
	assert.True(t, cfg.Simulator.APIs["openai"])
	assert.Equal(t, 20, cfg.Simulator.RateLimit.RPS)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				API:    APIConfig{BaseURL: "http://localhost:8000/api", PollInterval: time.Second},
				Server: ServerConfig{Host: "localhost", Port: 8000},
			},
		},
		{
			name: "invalid port",
			config: &Config{
				API:    APIConfig{BaseURL: "http://localhost:8000/api"},
				Server: ServerConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "missing base url",
			config: &Config{
				Server: ServerConfig{Port: 8000},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateFillsIntervals(t *testing.T) {
	cfg := &Config{
		API:    APIConfig{BaseURL: "http://localhost:8000/api"},
		Server: ServerConfig{Port: 8000},
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2*time.Second, cfg.API.PollInterval)
	assert.Equal(t, time.Second, cfg.Simulator.StepInterval)
}
