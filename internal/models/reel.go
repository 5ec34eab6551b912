package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

// VideoStyle is the visual style of the generated reel
type VideoStyle string

const (
	StyleCinematic VideoStyle = "cinematic"
	StyleVibrant   VideoStyle = "vibrant"
	StyleMinimal   VideoStyle = "minimal"
	StyleDark      VideoStyle = "dark"
)

// VoiceGender selects the voice-over voice
type VoiceGender string

const (
	VoiceMale   VoiceGender = "male"
	VoiceFemale VoiceGender = "female"
)

// MusicGenre selects the background track
type MusicGenre string

const (
	MusicNone         MusicGenre = "none"
	MusicUpbeat       MusicGenre = "upbeat"
	MusicAmbient      MusicGenre = "ambient"
	MusicDramatic     MusicGenre = "dramatic"
	MusicMotivational MusicGenre = "motivational"
)

// Duration bounds for a reel, in seconds
const (
	MinDurationSeconds  = 15
	MaxDurationSeconds  = 60
	DurationStepSeconds = 5
	MaxTopicLength      = 500
)

// GenerationRequest describes one reel to generate. It is passed by value and
// never mutated after submission.
type GenerationRequest struct {
	Topic           string      `json:"topic" validate:"required,max=500"`
	Language        string      `json:"language" validate:"required"`
	Style           VideoStyle  `json:"style" validate:"oneof=cinematic vibrant minimal dark"`
	VoiceGender     VoiceGender `json:"voice_gender" validate:"oneof=male female"`
	Music           MusicGenre  `json:"music" validate:"oneof=none upbeat ambient dramatic motivational"`
	DurationSeconds int         `json:"duration_seconds" validate:"min=15,max=60"`
	AddSubtitles    bool        `json:"add_subtitles"`
}

// DefaultRequest returns a request for topic with the stock options
func DefaultRequest(topic string) GenerationRequest {
	return GenerationRequest{
		Topic:           topic,
		Language:        "es",
		Style:           StyleVibrant,
		VoiceGender:     VoiceFemale,
		Music:           MusicUpbeat,
		DurationSeconds: 30,
		AddSubtitles:    true,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks every field constraint of the request
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return apperrors.ValidationError("topic", "must not be empty")
	}

	if err := requestValidator().Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperrors.ValidationError(jsonFieldName(fe.Field()), describeTag(fe))
		}
		return apperrors.ValidationError("request", err.Error())
	}

	if r.DurationSeconds%DurationStepSeconds != 0 {
		return apperrors.ValidationError("duration_seconds",
			fmt.Sprintf("must be a multiple of %d", DurationStepSeconds))
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func jsonFieldName(field string) string {
	switch field {
	case "VoiceGender":
		return "voice_gender"
	case "DurationSeconds":
		return "duration_seconds"
	case "AddSubtitles":
		return "add_subtitles"
	default:
		return strings.ToLower(field)
	}
}

// EstimatedSeconds mirrors the backend estimate of roughly four seconds of
// processing per second of video
func (r GenerationRequest) EstimatedSeconds() int {
	return r.DurationSeconds * 4
}
