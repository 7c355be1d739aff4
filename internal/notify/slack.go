package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackSender delivers messages to a Slack incoming webhook
type SlackSender struct {
	client *http.Client
}

// NewSlackSender creates a Slack webhook sender with the given timeout
func NewSlackSender(timeoutSec int) *SlackSender {
	return &SlackSender{
		client: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

type slackMessage struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

// Send posts the message to the webhook. A non-2xx response is an error.
func (s *SlackSender) Send(webhookURL, channel, text string) error {
	body, err := json.Marshal(slackMessage{Text: text, Channel: channel})
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %w", err)
	}

	resp, err := s.client.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}
