package models

// Phase is the client-facing classification of a generation attempt
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseSubmitting       Phase = "submitting"
	PhaseGeneratingScript Phase = "generating_script"
	PhaseGeneratingAudio  Phase = "generating_audio"
	PhaseGeneratingImages Phase = "generating_images"
	PhaseComposingVideo   Phase = "composing_video"
	PhaseCompleted        Phase = "completed"
	PhaseError            Phase = "error"
)

// IsTerminal reports whether the attempt has ended
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseError
}

// IsActive reports whether an attempt is still running
func (p Phase) IsActive() bool {
	return p != PhaseIdle && !p.IsTerminal()
}
