package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend health",
	Long: `Query the generation backend's health endpoint and report its
version and which upstream providers it has credentials for.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)
	client := newClient(cmd, cfg, &log)

	health, err := client.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("backend unavailable at %s: %s", client.BaseURL(), apperrors.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backend:     %s\n", client.BaseURL())
	fmt.Fprintf(out, "Status:      %s\n", health.Status)
	fmt.Fprintf(out, "Version:     %s\n", health.Version)
	fmt.Fprintln(out, "Providers:")
	fmt.Fprintf(out, "  openai      %s\n", availability(health.APIs.OpenAI))
	fmt.Fprintf(out, "  elevenlabs  %s\n", availability(health.APIs.ElevenLabs))
	fmt.Fprintf(out, "  stability   %s\n", availability(health.APIs.Stability))
	fmt.Fprintf(out, "  pexels      %s\n", availability(health.APIs.Pexels))
	return nil
}

func availability(configured bool) string {
	if configured {
		return "configured"
	}
	return "missing"
}
