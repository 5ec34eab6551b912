package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobErrorTaxonomy(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name        string
		err         *AppError
		wantCode    ErrorCode
		wantMessage string
		wantHTTP    int
	}{
		{
			name:        "submission error",
			err:         SubmissionError("connection refused", cause),
			wantCode:    ErrCodeSubmission,
			wantMessage: "could not start generation: connection refused",
			wantHTTP:    http.StatusBadGateway,
		},
		{
			name:        "fetch error",
			err:         FetchError("job-1", "status 404", nil),
			wantCode:    ErrCodeFetch,
			wantMessage: "could not fetch job status: status 404",
			wantHTTP:    http.StatusBadGateway,
		},
		{
			name:        "job failure keeps backend text",
			err:         JobFailure("job-1", "quota exceeded"),
			wantCode:    ErrCodeJobFailed,
			wantMessage: "quota exceeded",
			wantHTTP:    http.StatusInternalServerError,
		},
		{
			name:        "job failure without text falls back",
			err:         JobFailure("job-1", ""),
			wantCode:    ErrCodeJobFailed,
			wantMessage: DefaultJobFailureMessage,
			wantHTTP:    http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantMessage, UserMessage(tt.err))
			assert.Equal(t, tt.wantHTTP, tt.err.GetHTTPCode())
		})
	}
}

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	inner := JobFailure("job-1", "boom")
	wrapped := fmt.Errorf("polling: %w", inner)

	assert.True(t, Is(wrapped, ErrCodeJobFailed))
	assert.False(t, Is(wrapped, ErrCodeFetch))
	assert.Equal(t, ErrCodeJobFailed, GetCode(wrapped))
	assert.Equal(t, "boom", UserMessage(wrapped))
}

func TestPlainErrors(t *testing.T) {
	err := stderrors.New("plain")

	assert.Equal(t, ErrCodeInternal, GetCode(err))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPCode(err))
	assert.Equal(t, "plain", UserMessage(err))
	assert.Equal(t, "", UserMessage(nil))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("root")
	err := Cancelled("poll", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: root")
	assert.Equal(t, "poll cancelled", err.Message)
}

func TestNotFound(t *testing.T) {
	err := NotFound("job", "abc")

	assert.Equal(t, http.StatusNotFound, err.GetHTTPCode())
	assert.Equal(t, "abc", err.Details["id"])
}
