package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a generation job and its files",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)
	client := newClient(cmd, cfg, &log)

	if err := client.DeleteJob(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("%s", apperrors.UserMessage(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", args[0])
	return nil
}
