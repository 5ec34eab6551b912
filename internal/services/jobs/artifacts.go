package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/killallgit/reelgen/internal/models"
)

// Output geometry of a rendered reel
const (
	VideoWidth  = 1080
	VideoHeight = 1920
	VideoFPS    = 30
)

// ArtifactStore persists the output of finished jobs
type ArtifactStore interface {
	Save(ctx context.Context, job *models.StoredJob) (string, error)
	Path(jobID string) (string, bool)
	Delete(ctx context.Context, jobID string) error
}

// RenderManifest is what the simulator produces in place of an encoded video
type RenderManifest struct {
	JobID      string                   `json:"job_id"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
	FPS        int                      `json:"fps"`
	Request    models.GenerationRequest `json:"request"`
	Script     *models.ScriptArtifact   `json:"script"`
	Subtitles  string                   `json:"subtitles,omitempty"`
	RenderedAt time.Time                `json:"rendered_at"`
}

// FilesystemArtifacts stores one manifest file per job
type FilesystemArtifacts struct {
	basePath string
}

// NewFilesystemArtifacts creates the output directory if needed
func NewFilesystemArtifacts(basePath string) (*FilesystemArtifacts, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FilesystemArtifacts{basePath: basePath}, nil
}

// FileName is the download name offered for a job's artifact
func FileName(jobID string) string {
	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("reel_%s.json", short)
}

func (fs *FilesystemArtifacts) pathFor(jobID string) string {
	return filepath.Join(fs.basePath, filepath.Base(jobID)+".json")
}

// Save renders the job's manifest to disk
func (fs *FilesystemArtifacts) Save(ctx context.Context, job *models.StoredJob) (string, error) {
	manifest := RenderManifest{
		JobID:      job.ID,
		Width:      VideoWidth,
		Height:     VideoHeight,
		FPS:        VideoFPS,
		Request:    models.GenerationRequest(job.Request),
		RenderedAt: time.Now().UTC(),
	}
	if job.Script != nil {
		script := models.ScriptArtifact(*job.Script)
		manifest.Script = &script
		if job.Request.AddSubtitles {
			manifest.Subtitles = SubtitlesSRT(&script)
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := fs.pathFor(job.ID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// Path returns the artifact location if it exists
func (fs *FilesystemArtifacts) Path(jobID string) (string, bool) {
	path := fs.pathFor(jobID)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Delete removes a job's artifact, missing files are ignored
func (fs *FilesystemArtifacts) Delete(ctx context.Context, jobID string) error {
	if err := os.Remove(fs.pathFor(jobID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SubtitlesSRT renders the script's scenes as SRT cues
func SubtitlesSRT(script *models.ScriptArtifact) string {
	var b strings.Builder
	var at float64
	for i, scene := range script.Scenes {
		start := at
		at += scene.Duration
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(start), srtTimestamp(at), scene.Text)
	}
	return b.String()
}

func srtTimestamp(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	ms := int(d%time.Second) / int(time.Millisecond)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
