package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/reelgen/api/types"
	"github.com/killallgit/reelgen/internal/database"
	"github.com/killallgit/reelgen/internal/metrics"
	"github.com/killallgit/reelgen/internal/models"
	"github.com/killallgit/reelgen/internal/services/jobs"
	"github.com/killallgit/reelgen/pkg/logging"
)

func newTestServer(t *testing.T, limits RateLimits) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(":memory:", false, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.AutoMigrate(&models.StoredJob{}))

	artifacts, err := jobs.NewFilesystemArtifacts(t.TempDir())
	require.NoError(t, err)

	collector := metrics.NewCollector()
	svc := jobs.NewService(jobs.NewRepository(db.DB), logging.Discard(),
		jobs.WithArtifacts(artifacts),
		jobs.WithObserver(collector),
	)

	server := NewServer(":0", ServerOptions{RateLimits: limits}, logging.Discard())
	server.SetDependencies(&types.Dependencies{
		DB:         db,
		JobService: svc,
		Artifacts:  artifacts,
		Metrics:    collector,
		Version:    "1.0.0",
		APIs:       map[string]bool{"openai": true},
	})
	require.NoError(t, server.Initialize())
	t.Cleanup(func() { server.Shutdown(context.Background()) })
	return server
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = "10.0.0.1:4000"
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t, RateLimits{})

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"version", http.MethodGet, "/", http.StatusOK},
		{"root health", http.MethodGet, "/health", http.StatusOK},
		{"api health", http.MethodGet, "/api/health", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"docs redirect", http.MethodGet, "/docs", http.StatusMovedPermanently},
		{"unknown job", http.MethodGet, "/api/status/unknown", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/v2/nothing", http.StatusNotFound},
		{"preflight", http.MethodOptions, "/api/generate", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, tt.method, tt.path, "")
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestServer_HealthReportsAPIs(t *testing.T) {
	s := newTestServer(t, RateLimits{})

	w := serve(s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var health models.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.0.0", health.Version)
	assert.True(t, health.APIs.OpenAI)
	assert.False(t, health.APIs.Pexels)
}

func TestServer_NotFoundBody(t *testing.T) {
	s := newTestServer(t, RateLimits{})

	w := serve(s, http.MethodGet, "/nowhere", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "The requested endpoint was not found", body.Detail)
}

func TestServer_SubmitRateLimit(t *testing.T) {
	s := newTestServer(t, RateLimits{RPS: 1, Burst: 1})

	w := serve(s, http.MethodPost, "/api/generate", `{"topic":"first"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = serve(s, http.MethodPost, "/api/generate", `{"topic":"second"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Status polling is not limited
	for i := 0; i < 5; i++ {
		w = serve(s, http.MethodGet, "/api/status/unknown", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestServer_MetricsCountJobs(t *testing.T) {
	s := newTestServer(t, RateLimits{})

	w := serve(s, http.MethodPost, "/api/generate", `{"topic":"night markets"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reelgen_jobs_created_total 1")
	assert.Contains(t, w.Body.String(), `reelgen_http_requests_total{code="202",method="POST",route="/api/generate"} 1`)
}

func TestServer_ShutdownTwice(t *testing.T) {
	s := newTestServer(t, RateLimits{RPS: 5, Burst: 5})

	assert.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, s.Shutdown(context.Background()))
}
