// Package hospitable delivers approved replies to guests through the
// Hospitable public API. Booked guests are addressed via their reservation,
// inquiries via their conversation.
package hospitable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://public.api.hospitable.com/v2"

// ErrNoTarget means the draft carries neither a reservation nor a
// conversation identifier and cannot be delivered.
var ErrNoTarget = errors.New("neither reservation nor conversation id provided")

// Target addresses one outbound guest message.
type Target struct {
	ReservationID  string
	ConversationID string
}

// Client sends guest messages through the Hospitable API.
type Client struct {
	token      string
	senderID   string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a delivery client. senderID selects which co-host
// identity outbound messages are attributed to.
func NewClient(token, senderID string) *Client {
	return &Client{
		token:      token,
		senderID:   senderID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint for tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// SendMessage delivers one message body to the guest addressed by target.
// The reservation endpoint wins when both identifiers are present.
func (c *Client) SendMessage(ctx context.Context, target Target, body string) error {
	if c.token == "" {
		return errors.New("hospitable API token is not configured")
	}

	var url string
	switch {
	case target.ReservationID != "":
		url = fmt.Sprintf("%s/reservations/%s/messages", c.baseURL, target.ReservationID)
	case target.ConversationID != "":
		url = fmt.Sprintf("%s/inquiries/%s/messages", c.baseURL, target.ConversationID)
	default:
		return ErrNoTarget
	}

	payload, err := json.Marshal(map[string]string{
		"body":      body,
		"sender_id": c.senderID,
	})
	if err != nil {
		return fmt.Errorf("marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build message request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("hospitable API error %d: %s", resp.StatusCode, excerpt)
	}

	return nil
}
