package models

// JobStatus is the backend's vocabulary for a job's stage
type JobStatus string

const (
	JobStatusPending          JobStatus = "pending"
	JobStatusGeneratingScript JobStatus = "generating_script"
	JobStatusGeneratingAudio  JobStatus = "generating_audio"
	JobStatusGeneratingImages JobStatus = "generating_images"
	JobStatusComposingVideo   JobStatus = "composing_video"
	JobStatusCompleted        JobStatus = "completed"
	JobStatusFailed           JobStatus = "failed"
)

// AllJobStatuses lists the backend vocabulary in pipeline order
var AllJobStatuses = []JobStatus{
	JobStatusPending,
	JobStatusGeneratingScript,
	JobStatusGeneratingAudio,
	JobStatusGeneratingImages,
	JobStatusComposingVideo,
	JobStatusCompleted,
	JobStatusFailed,
}

// IsTerminal returns true if polling should stop at this status
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Scene is one narrated segment of a script
type Scene struct {
	Order        int     `json:"order"`
	Text         string  `json:"text"`
	VisualPrompt string  `json:"visual_prompt"`
	Duration     float64 `json:"duration"`
	Transition   string  `json:"transition"`
}

// ScriptArtifact is the generated script. It can arrive before the job finishes.
type ScriptArtifact struct {
	Title         string   `json:"title"`
	Hook          string   `json:"hook"`
	Scenes        []Scene  `json:"scenes"`
	CallToAction  string   `json:"call_to_action"`
	Hashtags      []string `json:"hashtags"`
	TotalDuration float64  `json:"total_duration"`
}

// JobSnapshot is one polled observation of a backend job
type JobSnapshot struct {
	JobID       string          `json:"job_id"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"`
	Message     string          `json:"message"`
	DownloadURL *string         `json:"download_url"`
	Script      *ScriptArtifact `json:"script"`
	Error       *string         `json:"error"`
	CreatedAt   *string         `json:"created_at"`
}

// ErrorText returns the snapshot's error text or empty
func (s *JobSnapshot) ErrorText() string {
	if s == nil || s.Error == nil {
		return ""
	}
	return *s.Error
}

// SubmitResponse is returned when the backend accepts a job
type SubmitResponse struct {
	JobID                string `json:"job_id"`
	Message              string `json:"message"`
	EstimatedTimeSeconds int    `json:"estimated_time_seconds"`
}

// APIAvailability reports which upstream providers the backend has credentials for
type APIAvailability struct {
	OpenAI     bool `json:"openai"`
	ElevenLabs bool `json:"elevenlabs"`
	Stability  bool `json:"stability"`
	Pexels     bool `json:"pexels"`
}

// HealthStatus is the backend health report
type HealthStatus struct {
	Status  string          `json:"status"`
	Version string          `json:"version"`
	APIs    APIAvailability `json:"apis"`
}
