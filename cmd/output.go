package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/killallgit/reelgen/internal/models"
	"github.com/killallgit/reelgen/internal/services/phases"
	"github.com/killallgit/reelgen/internal/services/session"
	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

var stepMarks = map[phases.StepState]string{
	phases.StepPending: "[ ]",
	phases.StepActive:  "[>]",
	phases.StepDone:    "[x]",
	phases.StepError:   "[!]",
}

// stateRenderer prints session states, skipping repeats
type stateRenderer struct {
	out       io.Writer
	lastPhase models.Phase
	lastLine  string
}

func newStateRenderer(out io.Writer) *stateRenderer {
	return &stateRenderer{out: out, lastPhase: models.PhaseIdle}
}

// Render writes st when it differs from the previously rendered state
func (r *stateRenderer) Render(st session.State) {
	if st.Phase == models.PhaseIdle {
		return
	}

	if st.Phase != r.lastPhase && st.Phase != models.PhaseSubmitting {
		fmt.Fprintln(r.out, stepLine(st.Phase))
	}
	r.lastPhase = st.Phase

	line := fmt.Sprintf("[%3d%%] %-17s %s", st.Progress, st.Phase, st.Message)
	if st.Phase == models.PhaseError {
		line = fmt.Sprintf("[  0%%] %-17s %s", st.Phase, st.Error)
	}
	if line == r.lastLine {
		return
	}
	r.lastLine = line
	fmt.Fprintln(r.out, line)
}

// stepLine renders the pipeline checklist for phase
func stepLine(phase models.Phase) string {
	parts := make([]string, 0, len(phases.Steps))
	for _, step := range phases.Steps {
		parts = append(parts, stepMarks[phases.StepStateFor(step.Phase, phase)]+" "+step.Label)
	}
	return strings.Join(parts, "  ")
}

func printCompleted(out io.Writer, st session.State) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Reel ready")
	fmt.Fprintln(out, repeatString("-", 40))
	fmt.Fprintf(out, "Job:       %s\n", st.JobID)
	if st.Script != nil && st.Script.Title != "" {
		fmt.Fprintf(out, "Title:     %s\n", st.Script.Title)
	}
	fmt.Fprintf(out, "Preview:   %s\n", st.PreviewURL)
	fmt.Fprintf(out, "Download:  %s\n", st.DownloadURL)
}

func printScript(out io.Writer, script *models.ScriptArtifact) {
	if script == nil {
		fmt.Fprintln(out, "No script available")
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s\n", script.Title)
	fmt.Fprintln(out, repeatString("-", 40))
	if script.Hook != "" {
		fmt.Fprintf(out, "Hook: %s\n", script.Hook)
	}
	for _, scene := range script.Scenes {
		fmt.Fprintf(out, "%2d. (%.1fs, %s) %s\n", scene.Order, scene.Duration, scene.Transition, scene.Text)
	}
	if script.CallToAction != "" {
		fmt.Fprintf(out, "CTA:  %s\n", script.CallToAction)
	}
	if len(script.Hashtags) > 0 {
		fmt.Fprintf(out, "Tags: %s\n", strings.Join(script.Hashtags, " "))
	}
	fmt.Fprintf(out, "Total: %.1fs\n", script.TotalDuration)
}

func printSnapshot(out io.Writer, snap *models.JobSnapshot) {
	fmt.Fprintf(out, "Job:       %s\n", snap.JobID)
	fmt.Fprintf(out, "Status:    %s (%s)\n", snap.Status, phases.FromStatus(snap.Status))
	fmt.Fprintf(out, "Progress:  %d%%\n", snap.Progress)
	if snap.Message != "" {
		fmt.Fprintf(out, "Message:   %s\n", snap.Message)
	}
	if snap.CreatedAt != nil {
		fmt.Fprintf(out, "Created:   %s\n", *snap.CreatedAt)
	}
	if snap.Script != nil {
		fmt.Fprintf(out, "Script:    %s (%d scenes)\n", snap.Script.Title, len(snap.Script.Scenes))
	}
	if snap.DownloadURL != nil {
		fmt.Fprintf(out, "Download:  %s\n", *snap.DownloadURL)
	}
	if snap.Status == models.JobStatusFailed {
		msg := snap.ErrorText()
		if msg == "" {
			msg = apperrors.DefaultJobFailureMessage
		}
		fmt.Fprintf(out, "Error:     %s\n", msg)
	}
}

// repeatString repeats a string n times
func repeatString(s string, n int) string {
	return strings.Repeat(s, n)
}
