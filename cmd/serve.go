package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/killallgit/reelgen/api"
	"github.com/killallgit/reelgen/api/types"
	"github.com/killallgit/reelgen/internal/database"
	"github.com/killallgit/reelgen/internal/metrics"
	"github.com/killallgit/reelgen/internal/models"
	"github.com/killallgit/reelgen/internal/services/cleanup"
	"github.com/killallgit/reelgen/internal/services/jobs"
	"github.com/killallgit/reelgen/internal/services/workers"
	"github.com/killallgit/reelgen/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulated generation backend",
	Long: `Start a local generation backend that speaks the same HTTP API as the
real service. Jobs advance through the script, voice-over, image and
composition stages on a timer and finish with a render manifest instead
of an encoded video.

Topics containing the configured fail keyword fail at the image stage,
which makes error handling easy to exercise.

Example:
  reelgen serve
  reelgen serve --port 9090
  reelgen serve --host 127.0.0.1 --port 8000 --fail-keyword meltdown`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().String("fail-keyword", "", "topics containing this fail at the image stage (overrides config)")
	serveCmd.Flags().String("database", "", "SQLite database path, \":memory:\" keeps jobs in memory (overrides config)")
	serveCmd.Flags().String("output-dir", "", "directory for rendered reels (overrides config)")
	serveCmd.Flags().Bool("db-debug", false, "log every SQL statement")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	log := newLogger(cmd, cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	verbose, _ := cmd.Flags().GetBool("db-debug")
	db, err := database.Initialize(cfg.Simulator.DatabasePath, verbose, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.StoredJob{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	artifacts, err := jobs.NewFilesystemArtifacts(cfg.Simulator.OutputDir)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	jobService := jobs.NewService(jobs.NewRepository(db.DB), log,
		jobs.WithArtifacts(artifacts),
		jobs.WithObserver(collector),
		jobs.WithFailKeyword(cfg.Simulator.FailKeyword, cfg.Simulator.FailMessage),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := workers.NewWorker("simulator", jobService, cfg.Simulator.StepInterval, log)
	worker.Start(ctx)
	defer worker.Stop()

	sweeper := cleanup.NewService(jobService, cfg.Simulator.JobRetention, cfg.Simulator.CleanupInterval, log)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := api.NewServer(address, api.ServerOptions{
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		RateLimits:     rateLimits(cfg),
	}, log)
	server.SetDependencies(&types.Dependencies{
		DB:         db,
		JobService: jobService,
		Artifacts:  artifacts,
		Metrics:    collector,
		Version:    cfg.Simulator.Version,
		APIs:       cfg.Simulator.APIs,
	})
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	return serveUntilDone(ctx, server, cfg, log)
}

// applyServeFlags lets explicit flags override the loaded config
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("database") {
		cfg.Simulator.DatabasePath, _ = flags.GetString("database")
	}
	if flags.Changed("output-dir") {
		cfg.Simulator.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("fail-keyword") {
		cfg.Simulator.FailKeyword, _ = flags.GetString("fail-keyword")
	}
}

func rateLimits(cfg *config.Config) api.RateLimits {
	if !cfg.Simulator.RateLimit.Enabled {
		return api.RateLimits{}
	}
	return api.RateLimits{RPS: cfg.Simulator.RateLimit.RPS, Burst: cfg.Simulator.RateLimit.Burst}
}

// serveUntilDone runs the server until ctx ends or it fails, then shuts it down
func serveUntilDone(ctx context.Context, server *api.Server, cfg *config.Config, log zerolog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	case runErr = <-serverErr:
		log.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server gracefully stopped")
	return runErr
}
