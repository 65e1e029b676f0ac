package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/batchalign/internal/models"
	"golang.org/x/oauth2"
)

// Submitter sends one work item to the alignment service.
type Submitter interface {
	// Submit performs a single attempt and always returns an [models.Outcome].
	Submit(ctx context.Context, item models.WorkItem) models.Outcome
}

// Prober reports whether the alignment service is reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

// NewHTTPClient returns a client that attaches token as a bearer credential.
// An empty token returns a plain client.
func NewHTTPClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return &http.Client{}
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return oauth2.NewClient(ctx, src)
}
