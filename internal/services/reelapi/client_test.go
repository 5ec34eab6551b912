package reelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/reelgen/internal/models"
	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		BaseURL: server.URL + "/api/",
		Timeout: 5 * time.Second,
	})
}

func TestClient_Submit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.GenerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "morning routines", req.Topic)
		assert.Equal(t, 30, req.DurationSeconds)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"job_id":"job-1","message":"started","estimated_time_seconds":120}`))
	})

	resp, err := client.Submit(context.Background(), models.DefaultRequest("morning routines"))
	require.NoError(t, err)
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, 120, resp.EstimatedTimeSeconds)
}

func TestClient_SubmitErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "string detail",
			status:      http.StatusInternalServerError,
			body:        `{"detail":"queue is full"}`,
			wantMessage: "could not start generation: queue is full",
		},
		{
			name:        "validation detail list",
			status:      http.StatusUnprocessableEntity,
			body:        `{"detail":[{"msg":"topic too long"},{"msg":"bad style"}]}`,
			wantMessage: "could not start generation: topic too long; bad style",
		},
		{
			name:        "error field",
			status:      http.StatusBadRequest,
			body:        `{"error":"invalid request"}`,
			wantMessage: "could not start generation: invalid request",
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        `upstream down`,
			wantMessage: "could not start generation: upstream down",
		},
		{
			name:        "missing job id",
			status:      http.StatusAccepted,
			body:        `{"message":"ok"}`,
			wantMessage: "could not start generation: backend returned no job id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			resp, err := client.Submit(context.Background(), models.DefaultRequest("topic"))
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeSubmission))
			assert.Equal(t, tt.wantMessage, apperrors.UserMessage(err))
		})
	}
}

func TestClient_SubmitTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: baseURL, Timeout: time.Second})
	_, err := client.Submit(context.Background(), models.DefaultRequest("topic"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeSubmission))
}

func TestClient_FetchStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/status/job-1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"job_id":"job-1","status":"generating_images","progress":55,
			"message":"Generating images...","download_url":null,
			"script":{"title":"Habits","hook":"Listen up","scenes":[{"order":1,"text":"One","visual_prompt":"sunrise","duration":5,"transition":"fade"}],
			"call_to_action":"Follow","hashtags":["#habits"],"total_duration":30},
			"error":null,"created_at":"2024-05-01T10:00:00"}`))
	})

	snap, err := client.FetchStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusGeneratingImages, snap.Status)
	assert.Equal(t, 55, snap.Progress)
	require.NotNil(t, snap.Script)
	assert.Equal(t, "Habits", snap.Script.Title)
	require.Len(t, snap.Script.Scenes, 1)
	assert.Equal(t, "sunrise", snap.Script.Scenes[0].VisualPrompt)
	assert.Nil(t, snap.DownloadURL)
}

func TestClient_FetchStatusNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"job not found"}`))
	})

	_, err := client.FetchStatus(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeFetch))
	assert.Equal(t, "could not fetch job status: job not found", apperrors.UserMessage(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "missing", appErr.Details["job_id"])
}

func TestClient_FetchStatusCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchStatus(ctx, "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Health(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.0.0","apis":{"openai":true,"elevenlabs":false,"stability":true,"pexels":false}}`))
	})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.APIs.OpenAI)
	assert.False(t, health.APIs.ElevenLabs)
	assert.True(t, health.APIs.Stability)
}

func TestClient_DeleteJob(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/job/job-1" {
			_, _ = w.Write([]byte(`{"message":"deleted"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"job not found"}`))
	})

	require.NoError(t, client.DeleteJob(context.Background(), "job-1"))

	err := client.DeleteJob(context.Background(), "other")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}

func TestClient_ArtifactURLs(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://reels.example.com/api/"})

	assert.Equal(t, "https://reels.example.com/api", client.BaseURL())
	assert.Equal(t, "https://reels.example.com/api/preview/abc", client.PreviewURL("abc"))
	assert.Equal(t, "https://reels.example.com/api/download/abc", client.DownloadURL("abc"))
	assert.Equal(t, int64(0), client.GetMetrics()["requests"])

	// Ids are escaped the same way as in the status and download requests
	assert.Equal(t, "https://reels.example.com/api/preview/a%2Fb%20c", client.PreviewURL("a/b c"))
	assert.Equal(t, "https://reels.example.com/api/download/a%2Fb%20c", client.DownloadURL("a/b c"))
}

func TestClient_DownloadURLMatchesRequest(t *testing.T) {
	var requested string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.EscapedPath()
		_, _ = w.Write([]byte("{}"))
	})

	var buf bytes.Buffer
	_, err := client.Download(context.Background(), "a/b c", &buf)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(client.DownloadURL("a/b c"), requested), requested)
}

func TestClient_Metrics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, _ = client.FetchStatus(context.Background(), "a")
	_, _ = client.FetchStatus(context.Background(), "b")

	metrics := client.GetMetrics()
	assert.Equal(t, int64(2), metrics["requests"])
	assert.Equal(t, int64(2), metrics["failures"])
}

func TestClient_Download(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/download/done":
			w.Header().Set("Content-Disposition", `attachment; filename="reel_done.json"`)
			_, _ = w.Write([]byte(`{"job_id":"done"}`))
		case "/api/download/pending":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"video is not ready, current status: pending"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"job not found"}`))
		}
	})

	var buf bytes.Buffer
	n, err := client.Download(context.Background(), "done", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(`{"job_id":"done"}`)), n)
	assert.Equal(t, `{"job_id":"done"}`, buf.String())

	_, err = client.Download(context.Background(), "pending", &buf)
	require.Error(t, err)
	assert.Contains(t, apperrors.UserMessage(err), "not ready")

	_, err = client.Download(context.Background(), "gone", &buf)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}
