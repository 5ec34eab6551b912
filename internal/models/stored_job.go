package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StoredJob is the simulated backend's persisted view of a generation job
type StoredJob struct {
	ID          string         `gorm:"primaryKey;size:36"`
	Status      JobStatus      `gorm:"default:'pending';index"`
	Progress    int            `gorm:"default:0"`
	Message     string
	Step        int            `gorm:"default:0"` // index into the stage plan
	Request     StoredRequest  `gorm:"type:json"`
	Script      *StoredScript  `gorm:"type:json"`
	DownloadURL string
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// StoredRequest persists the submitted request as JSON
type StoredRequest GenerationRequest

// Value implements driver.Valuer interface for StoredRequest
func (r StoredRequest) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner interface for StoredRequest
func (r *StoredRequest) Scan(value any) error {
	if value == nil {
		return nil
	}
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, r)
}

// StoredScript persists a script artifact as JSON
type StoredScript ScriptArtifact

// Value implements driver.Valuer interface for StoredScript
func (s *StoredScript) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface for StoredScript
func (s *StoredScript) Scan(value any) error {
	if value == nil {
		return nil
	}
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, s)
}

func jsonBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("type assertion to []byte failed")
	}
}

// IsTerminal returns true once the job has completed or failed
func (j *StoredJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// ToSnapshot renders the stored job in the status wire shape
func (j *StoredJob) ToSnapshot() JobSnapshot {
	created := j.CreatedAt.UTC().Format(time.RFC3339)
	snap := JobSnapshot{
		JobID:     j.ID,
		Status:    j.Status,
		Progress:  j.Progress,
		Message:   j.Message,
		CreatedAt: &created,
	}
	if j.Script != nil {
		script := ScriptArtifact(*j.Script)
		snap.Script = &script
	}
	if j.DownloadURL != "" {
		url := j.DownloadURL
		snap.DownloadURL = &url
	}
	if j.Error != "" {
		msg := j.Error
		snap.Error = &msg
	}
	return snap
}
