package phases

import "github.com/killallgit/reelgen/internal/models"

// FromStatus translates a backend job status into the client phase.
// Unknown statuses map to submitting so new backend stages never break the client.
func FromStatus(status models.JobStatus) models.Phase {
	switch status {
	case models.JobStatusPending:
		return models.PhaseSubmitting
	case models.JobStatusGeneratingScript:
		return models.PhaseGeneratingScript
	case models.JobStatusGeneratingAudio:
		return models.PhaseGeneratingAudio
	case models.JobStatusGeneratingImages:
		return models.PhaseGeneratingImages
	case models.JobStatusComposingVideo:
		return models.PhaseComposingVideo
	case models.JobStatusCompleted:
		return models.PhaseCompleted
	case models.JobStatusFailed:
		return models.PhaseError
	default:
		return models.PhaseSubmitting
	}
}
