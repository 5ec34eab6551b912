package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/killallgit/reelgen/internal/models"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status models.JobStatus
		want   models.Phase
	}{
		{models.JobStatusPending, models.PhaseSubmitting},
		{models.JobStatusGeneratingScript, models.PhaseGeneratingScript},
		{models.JobStatusGeneratingAudio, models.PhaseGeneratingAudio},
		{models.JobStatusGeneratingImages, models.PhaseGeneratingImages},
		{models.JobStatusComposingVideo, models.PhaseComposingVideo},
		{models.JobStatusCompleted, models.PhaseCompleted},
		{models.JobStatusFailed, models.PhaseError},
		// Unknown statuses fall back to submitting instead of failing
		{models.JobStatus("uploading_to_cdn"), models.PhaseSubmitting},
		{models.JobStatus(""), models.PhaseSubmitting},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, FromStatus(tt.status))
		})
	}
}

func TestFromStatusCoversBackendVocabulary(t *testing.T) {
	seen := make(map[models.JobStatus]bool)
	for _, status := range models.AllJobStatuses {
		seen[status] = true
		assert.NotEmpty(t, FromStatus(status))
	}
	assert.Len(t, seen, 7)
}

func TestStepStateFor(t *testing.T) {
	tests := []struct {
		name    string
		step    models.Phase
		current models.Phase
		want    StepState
	}{
		{"before start", models.PhaseGeneratingScript, models.PhaseSubmitting, StepPending},
		{"active step", models.PhaseGeneratingAudio, models.PhaseGeneratingAudio, StepActive},
		{"finished step", models.PhaseGeneratingScript, models.PhaseGeneratingImages, StepDone},
		{"later step", models.PhaseComposingVideo, models.PhaseGeneratingAudio, StepPending},
		{"all done on completion", models.PhaseComposingVideo, models.PhaseCompleted, StepDone},
		{"error marks every step", models.PhaseGeneratingScript, models.PhaseError, StepError},
		{"idle session", models.PhaseGeneratingScript, models.PhaseIdle, StepPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepStateFor(tt.step, tt.current))
		})
	}
}
