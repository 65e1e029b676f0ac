package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/batchalign/internal/shared"
)

var _ Prober = (*HealthService)(nil)

// HealthService queries the alignment service's probe endpoints.
type HealthService struct {
	healthURL  string
	infoURL    string
	httpClient *http.Client
}

// NewHealthService creates a probe client for the endpoints in cfg.
func NewHealthService(cfg shared.EndpointConfig, client *http.Client) *HealthService {
	if client == nil {
		client = http.DefaultClient
	}

	return &HealthService{
		healthURL:  cfg.HealthURL(),
		infoURL:    cfg.InfoURL(),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Health calls the health endpoint. A non-2xx status is reported as
// [shared.ErrServiceUnavailable] alongside the response.
func (h *HealthService) Health(ctx context.Context) (*APIResponse, error) {
	return h.probe(ctx, h.healthURL)
}

// Ping calls the health endpoint and discards the body.
func (h *HealthService) Ping(ctx context.Context) error {
	_, err := h.Health(ctx)
	return err
}

// Info calls the service info endpoint.
func (h *HealthService) Info(ctx context.Context) (*APIResponse, error) {
	return h.probe(ctx, h.infoURL)
}

func (h *HealthService) probe(ctx context.Context, url string) (*APIResponse, error) {
	resp, err := h.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	if !resp.OK() {
		return resp, fmt.Errorf("%w: %s returned status %d", shared.ErrServiceUnavailable, url, resp.StatusCode)
	}
	return resp, nil
}

// Get performs a GET request to url and returns the raw response.
func (h *HealthService) Get(ctx context.Context, url string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
