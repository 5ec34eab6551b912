package phases

import "github.com/killallgit/reelgen/internal/models"

// StepState is how a pipeline step renders for the current phase
type StepState string

const (
	StepPending StepState = "pending"
	StepActive  StepState = "active"
	StepDone    StepState = "done"
	StepError   StepState = "error"
)

// Step is one visible stage of the generation pipeline
type Step struct {
	Phase models.Phase
	Label string
}

// Steps are the pipeline stages in execution order
var Steps = []Step{
	{Phase: models.PhaseGeneratingScript, Label: "Script"},
	{Phase: models.PhaseGeneratingAudio, Label: "Voice-over"},
	{Phase: models.PhaseGeneratingImages, Label: "Scene images"},
	{Phase: models.PhaseComposingVideo, Label: "Composition"},
}

var order = map[models.Phase]int{
	models.PhaseSubmitting:       0,
	models.PhaseGeneratingScript: 1,
	models.PhaseGeneratingAudio:  2,
	models.PhaseGeneratingImages: 3,
	models.PhaseComposingVideo:   4,
	models.PhaseCompleted:        5,
}

// StepStateFor reports the state of step while the attempt is in current
func StepStateFor(step, current models.Phase) StepState {
	if current == models.PhaseError {
		return StepError
	}

	stepIdx, ok := order[step]
	if !ok {
		return StepPending
	}
	currentIdx, ok := order[current]
	if !ok {
		return StepPending
	}

	switch {
	case currentIdx > stepIdx:
		return StepDone
	case currentIdx == stepIdx:
		return StepActive
	default:
		return StepPending
	}
}
