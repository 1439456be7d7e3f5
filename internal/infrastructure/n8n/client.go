// Package n8n relays chat, analysis, and sync work to the external workflow
// engine. The workflows are opaque: a call either succeeds within its fixed
// timeout or fails, and nothing here retries.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quell-core-api/internal/ports"

	"github.com/rs/zerolog"
)

const (
	chatTimeout     = 60 * time.Second
	analysisTimeout = 60 * time.Second
	syncTimeout     = 5 * time.Second
)

// Client implements ports.AssistantClient against n8n webhook URLs
type Client struct {
	chatURL     string
	analysisURL string
	syncURL     string
	httpClient  *http.Client
	logger      zerolog.Logger
}

// NewClient creates a new n8n webhook client
func NewClient(chatURL, analysisURL, syncURL string, logger zerolog.Logger) *Client {
	return &Client{
		chatURL:     chatURL,
		analysisURL: analysisURL,
		syncURL:     syncURL,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

// SendChat relays one chat turn to the chat workflow
func (c *Client) SendChat(ctx context.Context, req *ports.ChatRequest) (*ports.ChatReply, error) {
	var reply ports.ChatReply
	if err := c.post(ctx, c.chatURL, chatTimeout, req, &reply); err != nil {
		return nil, fmt.Errorf("chat webhook: %w", err)
	}
	return &reply, nil
}

// Analyze relays one conversation transcript to the analysis workflow
func (c *Client) Analyze(ctx context.Context, req *ports.AnalysisRequest) (*ports.AnalysisReply, error) {
	var reply ports.AnalysisReply
	if err := c.post(ctx, c.analysisURL, analysisTimeout, req, &reply); err != nil {
		return nil, fmt.Errorf("analysis webhook: %w", err)
	}
	return &reply, nil
}

// TriggerSync fires the catalog sync workflow for a shop
func (c *Client) TriggerSync(ctx context.Context, shopDomain string) error {
	payload := map[string]string{"store": shopDomain}
	if err := c.post(ctx, c.syncURL, syncTimeout, payload, nil); err != nil {
		return fmt.Errorf("sync webhook: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, timeout time.Duration, payload interface{}, out interface{}) error {
	if url == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error().Int("status", resp.StatusCode).Str("url", url).Msg("Webhook returned non-2xx")
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode webhook response: %w", err)
	}
	return nil
}

var _ ports.AssistantClient = (*Client)(nil)
