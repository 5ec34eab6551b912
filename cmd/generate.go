package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/reelgen/internal/models"
	"github.com/killallgit/reelgen/internal/services/jobs"
	"github.com/killallgit/reelgen/internal/services/session"
	"github.com/killallgit/reelgen/pkg/config"
	"github.com/killallgit/reelgen/pkg/download"
	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a reel and follow it to completion",
	Long: `Submit a reel generation job for a topic and report its progress.

Options not given on the command line come from the generation section of
the configuration. Ctrl-C abandons the attempt; the backend job is left to
finish on its own.

Example:
  reelgen generate "the history of coffee"
  reelgen generate --style cinematic --duration 45 --music dramatic "deep sea creatures"
  reelgen generate --output ./reels "morning routines"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("language", "", "narration language code (overrides config)")
	generateCmd.Flags().String("style", "", "visual style: cinematic, vibrant, minimal, dark")
	generateCmd.Flags().String("voice", "", "voice-over gender: male, female")
	generateCmd.Flags().String("music", "", "background music: none, upbeat, ambient, dramatic, motivational")
	generateCmd.Flags().Int("duration", 0, "reel length in seconds, 15 to 60 in steps of 5")
	generateCmd.Flags().Bool("subtitles", true, "burn in subtitles")
	generateCmd.Flags().Duration("interval", 0, "status poll interval (overrides api.poll_interval)")
	generateCmd.Flags().Bool("skip-health", false, "do not check backend health before submitting")
	generateCmd.Flags().Bool("show-script", false, "print the generated script when the reel is ready")
	generateCmd.Flags().String("output", "", "directory to download the finished reel into")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	req, err := buildRequest(cmd, cfg, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", apperrors.UserMessage(err))
	}

	client := newClient(cmd, cfg, &log)
	out := cmd.OutOrStdout()

	if skip, _ := cmd.Flags().GetBool("skip-health"); !skip {
		health, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("backend unavailable at %s: %s", client.BaseURL(), apperrors.UserMessage(err))
		}
		log.Debug().
			Str("version", health.Version).
			Bool("openai", health.APIs.OpenAI).
			Bool("elevenlabs", health.APIs.ElevenLabs).
			Bool("stability", health.APIs.Stability).
			Bool("pexels", health.APIs.Pexels).
			Msg("backend healthy")
	}

	interval := cfg.API.PollInterval
	if flag, _ := cmd.Flags().GetDuration("interval"); flag > 0 {
		interval = flag
	}

	sess := session.New(client, interval, &log)
	updates, unsubscribe := sess.Subscribe()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		renderer := newStateRenderer(out)
		for st := range updates {
			renderer.Render(st)
		}
	}()

	// Ctrl-C abandons the attempt through Reset
	signals, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	finished := make(chan struct{})
	go func() {
		select {
		case <-signals.Done():
			sess.Reset()
		case <-finished:
		}
	}()

	final := sess.Start(cmd.Context(), req)
	close(finished)
	unsubscribe()
	<-printed

	switch final.Phase {
	case models.PhaseCompleted:
		printCompleted(out, final)
		if show, _ := cmd.Flags().GetBool("show-script"); show {
			printScript(out, final.Script)
		}
		if dir, _ := cmd.Flags().GetString("output"); dir != "" {
			return downloadReel(cmd.Context(), client, final.JobID, dir, out)
		}
		return nil
	case models.PhaseError:
		return fmt.Errorf("generation failed: %s", final.Error)
	default:
		return fmt.Errorf("generation interrupted")
	}
}

// buildRequest starts from the configured defaults and applies changed flags
func buildRequest(cmd *cobra.Command, cfg *config.Config, topic string) (models.GenerationRequest, error) {
	req := models.GenerationRequest{
		Topic:           strings.TrimSpace(topic),
		Language:        cfg.Generation.Language,
		Style:           models.VideoStyle(cfg.Generation.Style),
		VoiceGender:     models.VoiceGender(cfg.Generation.VoiceGender),
		Music:           models.MusicGenre(cfg.Generation.Music),
		DurationSeconds: cfg.Generation.DurationSeconds,
		AddSubtitles:    cfg.Generation.AddSubtitles,
	}

	flags := cmd.Flags()
	if flags.Changed("language") {
		req.Language, _ = flags.GetString("language")
	}
	if flags.Changed("style") {
		style, _ := flags.GetString("style")
		req.Style = models.VideoStyle(style)
	}
	if flags.Changed("voice") {
		voice, _ := flags.GetString("voice")
		req.VoiceGender = models.VoiceGender(voice)
	}
	if flags.Changed("music") {
		music, _ := flags.GetString("music")
		req.Music = models.MusicGenre(music)
	}
	if flags.Changed("duration") {
		req.DurationSeconds, _ = flags.GetInt("duration")
	}
	if flags.Changed("subtitles") {
		req.AddSubtitles, _ = flags.GetBool("subtitles")
	}

	if req.Topic == "" {
		return req, apperrors.ValidationError("topic", "must not be empty")
	}
	return req, nil
}

// downloader fetches a finished artifact
type downloader interface {
	Download(ctx context.Context, jobID string, dst io.Writer) (int64, error)
}

func downloadReel(ctx context.Context, client downloader, jobID, dir string, out io.Writer) error {
	// Clear partial files left by interrupted downloads
	if _, err := download.CleanupPartialFiles(dir, time.Hour); err != nil {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}

	fetch := func(ctx context.Context, dst io.Writer) (int64, error) {
		return client.Download(ctx, jobID, dst)
	}
	path, n, err := download.ToFile(ctx, dir, jobs.FileName(jobID), download.DefaultOptions(), fetch)
	if err != nil {
		return fmt.Errorf("download failed: %s", apperrors.UserMessage(err))
	}

	fmt.Fprintf(out, "Saved %s (%d bytes)\n", path, n)
	return nil
}
