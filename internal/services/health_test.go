package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/batchalign/internal/shared"
	tu "github.com/desertthunder/batchalign/internal/testing"
)

func endpointFor(url string) shared.EndpointConfig {
	cfg := shared.DefaultConfig().Endpoint
	cfg.BaseURL = url
	return cfg
}

func TestHealthService(t *testing.T) {
	t.Run("Health And Info", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET method, got %s", r.Method)
			}
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/health":
				w.Write([]byte(`{"status":"healthy"}`))
			case "/api/info":
				w.Write([]byte(`{"name":"aligner","version":"1.0.0"}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		srv := NewHealthService(endpointFor(server.URL), nil)

		resp, err := srv.Health(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !resp.IsJSON || resp.JSONData.(map[string]any)["status"] != "healthy" {
			t.Errorf("unexpected health body %s", resp.Body)
		}

		info, err := srv.Info(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if info.JSONData.(map[string]any)["version"] != "1.0.0" {
			t.Errorf("unexpected info body %s", info.Body)
		}

		if err := srv.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})

	t.Run("Unhealthy Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("down"))
		}))
		defer server.Close()

		resp, err := NewHealthService(endpointFor(server.URL), nil).Health(context.Background())
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if resp == nil || resp.IsJSON || string(resp.Body) != "down" {
			t.Errorf("expected raw response alongside error, got %+v", resp)
		}
	})

	t.Run("Failed HTTP Request", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}

		err := NewHealthService(endpointFor("http://example.com"), client).Ping(context.Background())
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if !strings.Contains(err.Error(), "request failed") {
			t.Errorf("expected 'request failed' error, got %v", err)
		}
	})

	t.Run("Failed Request Creation", func(t *testing.T) {
		_, err := NewHealthService(endpointFor("http://example.com"), nil).Get(context.Background(), "http://example.com/\x00")
		if err == nil || !strings.Contains(err.Error(), "failed to create request") {
			t.Errorf("expected 'failed to create request' error, got %v", err)
		}
	})

	t.Run("Failed Response Body Read", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       &tu.FCloser{},
			Header:     http.Header{},
		}, nil)}

		_, err := NewHealthService(endpointFor("http://example.com"), client).Get(context.Background(), "http://example.com/health")
		if err == nil || !strings.Contains(err.Error(), "failed to read response") {
			t.Errorf("expected 'failed to read response' error, got %v", err)
		}
	})
}
