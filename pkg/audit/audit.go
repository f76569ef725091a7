// Package audit ships finished conversation turns to an external webhook.
// Publishing is strictly best effort: one attempt, failures are logged and
// never propagated, and an empty URL disables the publisher entirely.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	URL     string        `split_words:"true"`
	Token   string        `split_words:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Record is one audited turn.
type Record struct {
	SessionID string    `json:"sessionId"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, rec Record)
}

type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

var _ Publisher = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, errors.New("audit url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// FromConfig returns a webhook client, or the no-op publisher when no URL is
// configured.
func FromConfig(cfg Config) (Publisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return Noop{}, nil
	}
	return NewClient(cfg)
}

func (c *Client) Publish(ctx context.Context, rec Record) {
	body, err := json.Marshal(rec)
	if err != nil {
		log.Error().Err(err).Str("session", rec.SessionID).Msg("audit: encode record")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Str("session", rec.SessionID).Msg("audit: build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("session", rec.SessionID).Msg("audit: publish failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("session", rec.SessionID).Msg("audit: publish rejected")
	}
}

// Noop discards every record.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) Publish(context.Context, Record) {}
