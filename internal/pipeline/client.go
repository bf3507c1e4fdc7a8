package pipeline

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/vitalscan/internal/cache"
	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/observability"
	"github.com/ppiankov/vitalscan/internal/util"
	"go.uber.org/zap"
)

// ErrUpstreamFailed is returned when the scoring service reports a failure
var ErrUpstreamFailed = errors.New("upstream assessment failed")

// AssessResponse is the scoring service's response envelope
type AssessResponse struct {
	Success     bool            `json:"success"`
	Report      json.RawMessage `json:"report,omitempty"`
	Error       string          `json:"error,omitempty"`
	RedirectURL string          `json:"redirect_url,omitempty"`
}

// AssessClient submits questionnaire forms to the scoring service
type AssessClient struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	maxBytes   int64
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewAssessClient creates a client for the configured scoring service.
// A nil cache disables response caching.
func NewAssessClient(cfg model.UpstreamConfig, c cache.Cache, cacheTTL time.Duration) *AssessClient {
	if c == nil {
		c = cache.Noop{}
	}
	transport := &http.Transport{Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed local scorers
	}
	return &AssessClient{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(cfg.AssessPath, "/"),
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

// CleanForm drops empty form values so the scoring service applies its own defaults
func CleanForm(form map[string]any) map[string]any {
	cleaned := make(map[string]any, len(form))
	for k, v := range form {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}

// Assess posts the form and returns the raw report from a successful response.
// Successful response bodies are cached by the form's content.
func (c *AssessClient) Assess(ctx context.Context, form map[string]any) (model.RawReport, error) {
	payload, err := json.Marshal(CleanForm(form))
	if err != nil {
		return nil, fmt.Errorf("marshal form: %w", err)
	}

	logger := observability.GetLogger()
	key := cache.CacheKey(payload)

	if body, ok := c.cache.Get(key); ok {
		logger.Debug("assessment cache hit", zap.String("key", key))
		return decodeAssessResponse(body)
	}

	body, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	raw, err := decodeAssessResponse(body)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(key, body, c.cacheTTL); err != nil {
		logger.Warn("failed to cache assessment", zap.Error(err))
	}
	return raw, nil
}

func (c *AssessClient) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post assessment: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	limit := c.maxBytes
	if limit <= 0 {
		limit = 2_000_000
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope AssessResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			return nil, fmt.Errorf("%w: %s (status %d)", ErrUpstreamFailed, envelope.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamFailed, resp.StatusCode)
	}

	return body, nil
}

func decodeAssessResponse(body []byte) (model.RawReport, error) {
	var envelope AssessResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = "no error message"
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstreamFailed, msg)
	}
	if len(envelope.Report) == 0 {
		return nil, nil
	}

	v, err := decodeJSON(envelope.Report)
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return model.RawFromValue(v), nil
}
