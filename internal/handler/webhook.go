package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/banyanstays/condobot/internal/dedup"
	"github.com/banyanstays/condobot/internal/model"
	"github.com/banyanstays/condobot/pkg/logger"
	"github.com/banyanstays/condobot/pkg/metrics"
)

// Processor runs the guest-message pipeline for one event.
type Processor interface {
	Process(ctx context.Context, evt *model.GuestMessageEvent)
}

// WebhookHandler ingests Hospitable webhooks: authenticate, deduplicate,
// acknowledge, then process detached from the response.
type WebhookHandler struct {
	secret    string
	ledger    *dedup.Ledger
	processor Processor
	logger    *logger.Logger
}

// NewWebhookHandler creates a webhook handler. An empty secret disables
// signature verification, an explicit degraded mode for local development.
func NewWebhookHandler(secret string, ledger *dedup.Ledger, processor Processor, log *logger.Logger) *WebhookHandler {
	if secret == "" {
		log.Warn("hospitable webhook secret not configured, signature verification disabled")
	}
	return &WebhookHandler{
		secret:    secret,
		ledger:    ledger,
		processor: processor,
		logger:    log,
	}
}

// Handle handles POST /webhooks/hospitable.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if h.secret != "" && !h.validSignature(body, r.Header.Get("Signature")) {
		h.logger.Warn("webhook signature verification failed")
		metrics.RecordWebhook("hospitable", "bad_signature")
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var payload model.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.RecordWebhook("hospitable", "malformed")
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	// Everything past this point is acknowledged with success: the
	// provider retries on anything else, and failures after auth/parse
	// are ours to handle, not theirs.
	defer writeJSON(w, http.StatusOK, map[string]string{"status": "received"})

	if payload.Action != "message.created" || payload.Data.SenderType != "guest" {
		h.logger.Debug("ignoring non-guest-message event",
			zap.String("action", payload.Action),
			zap.String("sender_type", payload.Data.SenderType),
		)
		metrics.RecordWebhook("hospitable", "ignored")
		return
	}

	evt := payload.Event()

	if evt.MessageID != "" && !h.ledger.IsNew(evt.MessageID) {
		h.logger.Info("duplicate webhook delivery, skipping",
			zap.String("message_id", evt.MessageID))
		metrics.RecordWebhook("hospitable", "duplicate")
		return
	}

	metrics.RecordWebhook("hospitable", "accepted")

	// Detached from the response: pipeline failures are logged, never
	// surfaced to the webhook caller.
	go h.processor.Process(context.Background(), evt)
}

func (h *WebhookHandler) validSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
