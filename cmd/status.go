package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/killallgit/reelgen/internal/models"
	"github.com/killallgit/reelgen/internal/services/polling"
	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the status of a generation job",
	Long: `Fetch the current status of a generation job.

With --watch the job is polled until it completes or fails.

Example:
  reelgen status 3f6c2d1e-8a4b-4c2e-9f7a-1b2c3d4e5f60
  reelgen status --watch 3f6c2d1e-8a4b-4c2e-9f7a-1b2c3d4e5f60`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolP("watch", "w", false, "poll until the job reaches a terminal status")
	statusCmd.Flags().Duration("interval", 0, "poll interval for --watch (overrides api.poll_interval)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)
	client := newClient(cmd, cfg, &log)
	out := cmd.OutOrStdout()
	jobID := args[0]

	snap, err := client.FetchStatus(cmd.Context(), jobID)
	if err != nil {
		return fmt.Errorf("%s", apperrors.UserMessage(err))
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch || snap.Status.IsTerminal() {
		printSnapshot(out, snap)
		return snapshotError(snap)
	}

	interval := cfg.API.PollInterval
	if flag, _ := cmd.Flags().GetDuration("interval"); flag > 0 {
		interval = flag
	}

	lastLine := ""
	poller := polling.NewPoller(client, interval, &log)
	final, err := poller.Poll(cmd.Context(), jobID, func(s models.JobSnapshot) {
		line := fmt.Sprintf("[%3d%%] %-17s %s", s.Progress, s.Status, s.Message)
		if line != lastLine {
			lastLine = line
			fmt.Fprintln(out, line)
		}
	})
	if final != nil {
		fmt.Fprintln(out)
		printSnapshot(out, final)
	}
	if err != nil {
		return fmt.Errorf("%s", apperrors.UserMessage(err))
	}
	return nil
}

// snapshotError turns a failed job into a non-zero exit
func snapshotError(snap *models.JobSnapshot) error {
	if snap.Status != models.JobStatusFailed {
		return nil
	}
	return fmt.Errorf("job failed: %s", apperrors.UserMessage(apperrors.JobFailure(snap.JobID, snap.ErrorText())))
}
