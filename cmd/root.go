package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/killallgit/reelgen/pkg/config"
	"github.com/killallgit/reelgen/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reelgen",
	Short: "Short-video reel generation client",
	Long: `reelgen - submit reel generation jobs and follow them to completion

A reel is a short vertical video generated from a topic: a script, a
voice-over, scene images and a final composition. Generation runs on a
backend service; reelgen submits the job, polls its status and reports
progress until the reel is ready or the job fails.

Features:
  • Generate a reel and follow its progress
  • Inspect, watch or delete existing jobs
  • Check backend health and provider availability
  • Run a simulated backend for local development`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Set up configuration loading with lazy initialization
	cobra.OnInitialize(loadConfig)

	// Add persistent flags for logging configuration
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error), overrides config")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
	rootCmd.PersistentFlags().String("api-url", "", "backend base URL, overrides api.base_url")
}

// loadConfig loads the configuration when a command needs it
func loadConfig() {
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && cmd.Name() == "version" {
		return // Version command doesn't need config
	}

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// appConfig returns the loaded configuration
func appConfig() (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// newLogger builds the command logger from config, letting the flags win
func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	level := cfg.Logging.Level
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		level = flag
	}

	format := cfg.Logging.Format
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		format = "json"
	}

	return logging.New(cmd.ErrOrStderr(), level, format)
}

// baseURL resolves the backend URL from the --api-url flag or config
func baseURL(cmd *cobra.Command, cfg *config.Config) string {
	if flag, _ := cmd.Flags().GetString("api-url"); flag != "" {
		return flag
	}
	return cfg.API.BaseURL
}
