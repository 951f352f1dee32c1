// Package slack is a minimal Slack Web API client covering the calls the
// approval workflow needs: posting to the triage channel, updating the
// draft card after a decision, and opening the edit modal.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/banyanstays/condobot/internal/model"
)

const defaultAPIURL = "https://slack.com/api"

// Client talks to the Slack Web API with a bot token.
type Client struct {
	token      string
	channel    string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Slack client posting into the given channel.
func NewClient(token, channel string) *Client {
	return &Client{
		token:      token,
		channel:    channel,
		baseURL:    defaultAPIURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint for tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	TS    string `json:"ts"`
}

func (c *Client) call(ctx context.Context, method string, payload any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !api.OK {
		return nil, fmt.Errorf("slack %s: %s", method, api.Error)
	}

	return &api, nil
}

// PostGuestMessage posts the inbound guest message to the triage channel
// and returns the message timestamp, which anchors the draft thread.
func (c *Client) PostGuestMessage(ctx context.Context, evt *model.GuestMessageEvent) (string, error) {
	text := fmt.Sprintf("*New guest message* on %s (%s)\n*From:* %s\n> %s",
		evt.ListingName, evt.Platform, evt.SenderName, evt.Body)

	resp, err := c.call(ctx, "chat.postMessage", map[string]any{
		"channel": c.channel,
		"text":    text,
	})
	if err != nil {
		return "", err
	}
	return resp.TS, nil
}

// PostDraft posts a draft reply into the guest-message thread. When
// withActions is set the card carries Approve and Edit buttons whose value
// round-trips the draft identifier; otherwise the draft is advisory-only
// plain text.
func (c *Client) PostDraft(ctx context.Context, threadTS, draftID, guestName, text string, withActions bool) (string, error) {
	payload := map[string]any{
		"channel":   c.channel,
		"thread_ts": threadTS,
		"text":      fmt.Sprintf("Draft reply to %s", guestName),
	}

	blocks := []map[string]any{
		{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Draft reply to %s:*\n%s", guestName, text),
			},
		},
	}

	if withActions {
		blocks = append(blocks, map[string]any{
			"type": "actions",
			"elements": []map[string]any{
				{
					"type":      "button",
					"action_id": "approve_draft",
					"style":     "primary",
					"text":      map[string]any{"type": "plain_text", "text": "Send"},
					"value":     draftID,
				},
				{
					"type":      "button",
					"action_id": "edit_draft",
					"text":      map[string]any{"type": "plain_text", "text": "Edit"},
					"value":     draftID,
				},
			},
		})
	} else {
		blocks = append(blocks, map[string]any{
			"type": "context",
			"elements": []map[string]any{
				{"type": "mrkdwn", "text": "No reservation or conversation on this message — reply must be sent manually."},
			},
		})
	}
	payload["blocks"] = blocks

	resp, err := c.call(ctx, "chat.postMessage", payload)
	if err != nil {
		return "", err
	}
	return resp.TS, nil
}

// UpdateSent rewrites the draft card after a successful delivery, showing
// who sent it and whether they edited it first.
func (c *Client) UpdateSent(ctx context.Context, messageTS, text, guestName, approver string, edited bool) error {
	suffix := ""
	if edited {
		suffix = " (edited)"
	}

	_, err := c.call(ctx, "chat.update", map[string]any{
		"channel": c.channel,
		"ts":      messageTS,
		"text":    fmt.Sprintf("Reply sent to %s", guestName),
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Reply sent to %s:*\n%s", guestName, text),
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{"type": "mrkdwn", "text": fmt.Sprintf(":white_check_mark: Sent by %s%s", approver, suffix)},
				},
			},
		},
	})
	return err
}

// EditModalCallbackID identifies edit-modal submissions.
const EditModalCallbackID = "edit_draft_modal"

// ModalMetadata is round-tripped through the modal's private metadata so a
// submission can be tied back to its draft without shared mutable state.
type ModalMetadata struct {
	DraftID string `json:"draft_id"`
}

// OpenEditModal opens the edit form prefilled with the current draft text.
func (c *Client) OpenEditModal(ctx context.Context, triggerID, draftID, draftText, guestName string) error {
	meta, err := json.Marshal(ModalMetadata{DraftID: draftID})
	if err != nil {
		return fmt.Errorf("marshal modal metadata: %w", err)
	}

	_, err = c.call(ctx, "views.open", map[string]any{
		"trigger_id": triggerID,
		"view": map[string]any{
			"type":             "modal",
			"callback_id":      EditModalCallbackID,
			"private_metadata": string(meta),
			"title":            map[string]any{"type": "plain_text", "text": "Edit draft"},
			"submit":           map[string]any{"type": "plain_text", "text": "Send"},
			"close":            map[string]any{"type": "plain_text", "text": "Cancel"},
			"blocks": []map[string]any{
				{
					"type":     "input",
					"block_id": "draft_input",
					"label":    map[string]any{"type": "plain_text", "text": fmt.Sprintf("Reply to %s", guestName)},
					"element": map[string]any{
						"type":          "plain_text_input",
						"action_id":     "draft_text",
						"multiline":     true,
						"initial_value": draftText,
					},
				},
			},
		},
	})
	return err
}
