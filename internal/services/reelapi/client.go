package reelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/killallgit/reelgen/internal/models"
	apperrors "github.com/killallgit/reelgen/pkg/errors"
)

const (
	defaultBaseURL   = "http://localhost:8000/api"
	defaultTimeout   = 5 * time.Minute
	defaultUserAgent = "reelgen/1.0"

	// maxErrorBody caps how much of an error response is read for its detail
	maxErrorBody = 64 << 10
)

// Config holds configuration for the reel API client
type Config struct {
	BaseURL string        // Default: http://localhost:8000/api
	Timeout time.Duration // Default: 5m, generation requests can be slow

	UserAgent string // Default: reelgen/1.0

	// Rate limiting, zero disables it
	RequestsPerSecond float64
	BurstSize         int // Default: 1

	HTTPClient *http.Client // Optional, overrides Timeout
	Logger     *zerolog.Logger
}

// Client talks to the reel generation backend
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
	logger      zerolog.Logger

	requests atomic.Int64
	failures atomic.Int64
}

// NewClient creates a new reel API client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}

	limiter := rate.NewLimiter(rate.Inf, cfg.BurstSize)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "reelapi").Logger()
	}

	return &Client{
		httpClient:  httpClient,
		rateLimiter: limiter,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		logger:      logger,
	}
}

// BaseURL returns the normalized API base
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit creates a new generation job
func (c *Client) Submit(ctx context.Context, req models.GenerationRequest) (*models.SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.SubmissionError("encode request", err)
	}

	var resp models.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/generate", body, &resp); err != nil {
		return nil, apperrors.SubmissionError(reasonOf(err), err)
	}
	if resp.JobID == "" {
		return nil, apperrors.SubmissionError("backend returned no job id", nil)
	}

	c.logger.Info().
		Str("job_id", resp.JobID).
		Int("estimated_seconds", resp.EstimatedTimeSeconds).
		Msg("generation job submitted")
	return &resp, nil
}

// FetchStatus reads the current snapshot of a job
func (c *Client) FetchStatus(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	var snap models.JobSnapshot
	if err := c.do(ctx, http.MethodGet, "/status/"+url.PathEscape(jobID), nil, &snap); err != nil {
		return nil, apperrors.FetchError(jobID, reasonOf(err), err)
	}

	c.logger.Debug().
		Str("job_id", jobID).
		Str("status", string(snap.Status)).
		Int("progress", snap.Progress).
		Msg("job status fetched")
	return &snap, nil
}

// Health reports backend availability and configured providers
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	var health models.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "health check failed: "+reasonOf(err))
	}
	return &health, nil
}

// DeleteJob removes a job and its artifacts from the backend
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	if err := c.do(ctx, http.MethodDelete, "/job/"+url.PathEscape(jobID), nil, nil); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return apperrors.NotFound("job", jobID)
		}
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "delete job failed: "+reasonOf(err)).
			WithDetail("job_id", jobID)
	}
	return nil
}

// PreviewURL returns where the finished video can be streamed. No I/O.
func (c *Client) PreviewURL(jobID string) string {
	return c.baseURL + "/preview/" + url.PathEscape(jobID)
}

// DownloadURL returns where the finished video can be downloaded. No I/O.
func (c *Client) DownloadURL(jobID string) string {
	return c.baseURL + "/download/" + url.PathEscape(jobID)
}

// GetMetrics returns request counters
func (c *Client) GetMetrics() map[string]int64 {
	return map[string]int64{
		"requests": c.requests.Load(),
		"failures": c.failures.Load(),
	}
}

// Download streams a finished job's artifact into dst and returns the bytes written
func (c *Client) Download(ctx context.Context, jobID string, dst io.Writer) (int64, error) {
	resp, err := c.send(ctx, http.MethodGet, "/download/"+url.PathEscape(jobID), nil, "*/*")
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return 0, apperrors.NotFound("video", jobID)
		}
		return 0, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "download failed: "+reasonOf(err)).
			WithDetail("job_id", jobID)
	}
	defer resp.Body.Close()

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		c.failures.Add(1)
		return n, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "download interrupted").
			WithDetail("job_id", jobID)
	}
	return n, nil
}

// do performs one JSON request. out may be nil when the body is not needed.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	resp, err := c.send(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.failures.Add(1)
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs one request and returns the response of a 2xx reply. The
// caller closes the body.
func (c *Client) send(ctx context.Context, method, path string, body []byte, accept string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	c.requests.Add(1)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.failures.Add(1)
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("http request: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		c.failures.Add(1)
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &statusError{code: resp.StatusCode, detail: errorDetail(raw)}
	}
	return resp, nil
}
