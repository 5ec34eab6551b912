package jobs

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/killallgit/reelgen/internal/models"
)

// stage is one observable step of the simulated generation pipeline
type stage struct {
	status   models.JobStatus
	progress int
	message  string

	withScript bool // attaches the generated script
	failPoint  bool // jobs marked to fail stop here
}

// pipeline mirrors the order and progress marks of the real generation backend
var pipeline = []stage{
	{status: models.JobStatusGeneratingScript, progress: 10, message: "Generating viral script with AI..."},
	{status: models.JobStatusGeneratingScript, progress: 25, message: "Script ready. Generating voice-over...", withScript: true},
	{status: models.JobStatusGeneratingAudio, progress: 30, message: "Converting script to natural speech..."},
	{status: models.JobStatusGeneratingAudio, progress: 50, message: "Voice-over ready. Creating scene visuals..."},
	{status: models.JobStatusGeneratingImages, progress: 55, message: "Generating images for each scene...", failPoint: true},
	{status: models.JobStatusGeneratingImages, progress: 70, message: "Images ready. Composing final video..."},
	{status: models.JobStatusComposingVideo, progress: 75, message: "Assembling video..."},
	{status: models.JobStatusCompleted, progress: 100, message: "Reel generated successfully"},
}

const (
	queuedMessage = "Job queued..."
	failedMessage = "Generation failed"

	secondsPerScene = 8
	minScenes       = 3
	maxHashtags     = 5
)

// StageCount is the number of worker ticks a successful job takes
func StageCount() int {
	return len(pipeline)
}

var transitions = []string{"fade", "slide", "zoom"}

// synthesizeScript builds a deterministic script for the request
func synthesizeScript(req models.GenerationRequest) *models.StoredScript {
	count := req.DurationSeconds / secondsPerScene
	if count < minScenes {
		count = minScenes
	}
	sceneDuration := float64(req.DurationSeconds) / float64(count)

	phrases := scriptPhrases(req.Language)
	topic := strings.TrimSpace(req.Topic)

	scenes := make([]models.Scene, 0, count)
	for i := 0; i < count; i++ {
		scenes = append(scenes, models.Scene{
			Order:        i + 1,
			Text:         fmt.Sprintf(phrases.scene, i+1, topic),
			VisualPrompt: fmt.Sprintf("Vertical %s shot about %s, scene %d, cinematic lighting, shallow depth of field", req.Style, topic, i+1),
			Duration:     sceneDuration,
			Transition:   transitions[i%len(transitions)],
		})
	}

	return &models.StoredScript{
		Title:         truncateRunes(topic, 60),
		Hook:          fmt.Sprintf(phrases.hook, topic),
		Scenes:        scenes,
		CallToAction:  phrases.cta,
		Hashtags:      hashtags(topic),
		TotalDuration: float64(req.DurationSeconds),
	}
}

type phrases struct {
	hook  string
	scene string
	cta   string
}

func scriptPhrases(language string) phrases {
	if language == "es" {
		return phrases{
			hook:  "Lo que nadie te cuenta sobre %s",
			scene: "Punto %d: %s",
			cta:   "Sígueme para más contenido así",
		}
	}
	return phrases{
		hook:  "What nobody tells you about %s",
		scene: "Point %d: %s",
		cta:   "Follow for more content like this",
	}
}

func hashtags(topic string) []string {
	tags := make([]string, 0, maxHashtags)
	seen := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(topic)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(word)) < 4 || seen[word] {
			continue
		}
		seen[word] = true
		tags = append(tags, "#"+word)
		if len(tags) == maxHashtags-1 {
			break
		}
	}
	return append(tags, "#reels")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
