// Package slacktools posts assistant messages to the team Slack channel
// through the configured relay endpoint.
package slacktools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"riabuilder/internal/logging"
	"riabuilder/internal/tools"
)

// Client posts messages to the Slack send endpoint.
type Client struct {
	sendURL    string
	httpClient *http.Client
}

// NewClient creates a Slack client. An empty sendURL leaves the client
// unconfigured; sends will fail with a config error.
func NewClient(sendURL string) *Client {
	return &Client{
		sendURL:    sendURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether a send endpoint is set.
func (c *Client) Configured() bool {
	return c.sendURL != ""
}

type sendRequest struct {
	Text string `json:"text"`
}

// SendResult is the relay's response for a delivered message.
type SendResult struct {
	OK      bool   `json:"ok"`
	Channel string `json:"channel,omitempty"`
	TS      string `json:"ts,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Send posts text to the Slack channel.
func (c *Client) Send(ctx context.Context, text string) (SendResult, error) {
	if !c.Configured() {
		return SendResult{}, fmt.Errorf("slack is not configured: no send URL set")
	}

	body, err := json.Marshal(sendRequest{Text: text})
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to marshal slack request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.sendURL, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to read slack response: %w", err)
	}

	var result SendResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return SendResult{}, fmt.Errorf("failed to parse slack response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !result.OK {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return SendResult{}, fmt.Errorf("slack send failed: %s", msg)
	}

	logging.Slack("Sent message to %s (ts=%s, %d chars)", result.Channel, result.TS, len(text))
	return result, nil
}

// Register adds send_slack_message to the registry.
func Register(r *tools.Registry, client *Client) {
	r.MustRegister(&tools.Tool{
		Name:        "send_slack_message",
		Description: "Send a message to the team Slack channel.",
		Category:    tools.CategoryMessaging,
		Schema: tools.ToolSchema{
			Required: []string{"text"},
			Properties: map[string]tools.Property{
				"text": {Type: "string", Description: "Message text to post"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			text, err := tools.RequiredString(args, "text")
			if err != nil {
				return "", err
			}
			result, err := client.Send(ctx, text)
			if err != nil {
				return "", err
			}
			if result.Channel != "" {
				return fmt.Sprintf("Message posted to %s.", result.Channel), nil
			}
			return "Message posted to Slack.", nil
		},
	})
}
