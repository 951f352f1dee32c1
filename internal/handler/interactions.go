package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/banyanstays/condobot/internal/slack"
	"github.com/banyanstays/condobot/pkg/logger"
	"github.com/banyanstays/condobot/pkg/metrics"
)

// ApprovalWorkflow consumes human decisions from Slack interactions.
type ApprovalWorkflow interface {
	Approve(ctx context.Context, draftID, approver string)
	SubmitEdit(ctx context.Context, draftID, editedText, approver string)
	OpenEdit(ctx context.Context, draftID, triggerID string)
}

// InteractionHandler handles Slack interaction callbacks. Slack requires a
// response within three seconds, so every decision is dispatched detached
// and the handler answers immediately.
type InteractionHandler struct {
	signingSecret string
	approvals     ApprovalWorkflow
	logger        *logger.Logger
	now           func() time.Time
}

// NewInteractionHandler creates an interaction handler. An empty signing
// secret disables signature verification for local development.
func NewInteractionHandler(signingSecret string, approvals ApprovalWorkflow, log *logger.Logger) *InteractionHandler {
	if signingSecret == "" {
		log.Warn("slack signing secret not configured, signature verification disabled")
	}
	return &InteractionHandler{
		signingSecret: signingSecret,
		approvals:     approvals,
		logger:        log,
		now:           time.Now,
	}
}

// interactionPayload covers both payload types Slack sends here.
type interactionPayload struct {
	Type      string `json:"type"`
	TriggerID string `json:"trigger_id"`
	User      struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
	Actions []struct {
		ActionID string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
	View struct {
		CallbackID      string `json:"callback_id"`
		PrivateMetadata string `json:"private_metadata"`
		State           struct {
			Values map[string]map[string]struct {
				Value string `json:"value"`
			} `json:"values"`
		} `json:"state"`
	} `json:"view"`
}

func (p *interactionPayload) userName() string {
	if p.User.Name != "" {
		return p.User.Name
	}
	if p.User.Username != "" {
		return p.User.Username
	}
	return "Someone"
}

// Handle handles POST /slack/interactions.
func (h *InteractionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if h.signingSecret != "" {
		err := slack.VerifySignature(
			h.signingSecret,
			r.Header.Get("X-Slack-Request-Timestamp"),
			r.Header.Get("X-Slack-Signature"),
			body,
			h.now(),
		)
		if err != nil {
			h.logger.Warn("slack signature verification failed", zap.Error(err))
			metrics.RecordWebhook("slack", "bad_signature")
			writeError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	var payload interactionPayload
	if err := json.Unmarshal([]byte(form.Get("payload")), &payload); err != nil {
		metrics.RecordWebhook("slack", "malformed")
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	metrics.RecordWebhook("slack", "accepted")

	switch payload.Type {
	case "block_actions":
		h.handleBlockActions(&payload)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case "view_submission":
		h.handleViewSubmission(&payload)
		writeJSON(w, http.StatusOK, map[string]string{"response_action": "clear"})
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func (h *InteractionHandler) handleBlockActions(payload *interactionPayload) {
	if len(payload.Actions) == 0 {
		return
	}

	action := payload.Actions[0]
	draftID := action.Value
	user := payload.userName()

	switch action.ActionID {
	case "approve_draft":
		go h.approvals.Approve(context.Background(), draftID, user)
	case "edit_draft":
		go h.approvals.OpenEdit(context.Background(), draftID, payload.TriggerID)
	default:
		h.logger.Debug("ignoring unknown action", zap.String("action_id", action.ActionID))
	}
}

func (h *InteractionHandler) handleViewSubmission(payload *interactionPayload) {
	if payload.View.CallbackID != slack.EditModalCallbackID {
		return
	}

	var meta slack.ModalMetadata
	if err := json.Unmarshal([]byte(payload.View.PrivateMetadata), &meta); err != nil {
		h.logger.Warn("malformed modal metadata", zap.Error(err))
		return
	}

	editedText := payload.View.State.Values["draft_input"]["draft_text"].Value
	go h.approvals.SubmitEdit(context.Background(), meta.DraftID, editedText, payload.userName())
}
