package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/banyanstays/condobot/internal/draft"
	"github.com/banyanstays/condobot/internal/hospitable"
	"github.com/banyanstays/condobot/internal/model"
	"github.com/banyanstays/condobot/pkg/logger"
	"github.com/banyanstays/condobot/pkg/metrics"
)

// Approvals consumes human decisions against pending drafts. A draft is
// deleted only after the guest delivery succeeds, so every later action
// against the same identifier finds nothing and does nothing — that is what
// makes a double-click or a duplicate Slack callback harmless.
type Approvals struct {
	store     *draft.Store
	messenger GuestMessenger
	notifier  Notifier
	logger    *logger.Logger
}

// NewApprovals creates the approval workflow.
func NewApprovals(store *draft.Store, messenger GuestMessenger, notifier Notifier, log *logger.Logger) *Approvals {
	return &Approvals{
		store:     store,
		messenger: messenger,
		notifier:  notifier,
		logger:    log,
	}
}

// Approve sends the stored draft text verbatim.
func (a *Approvals) Approve(ctx context.Context, draftID, approver string) {
	d, ok := a.store.Get(draftID)
	if !ok {
		a.logger.Warn("draft not found, already sent or expired",
			zap.String("draft_id", draftID))
		return
	}
	a.deliver(ctx, d, d.DraftText, approver, false)
}

// SubmitEdit sends the text the human submitted in the edit form. The
// stored draft is never mutated: an abandoned edit must not corrupt a
// later plain approval.
func (a *Approvals) SubmitEdit(ctx context.Context, draftID, editedText, approver string) {
	d, ok := a.store.Get(draftID)
	if !ok {
		a.logger.Warn("draft not found on edit submit",
			zap.String("draft_id", draftID))
		return
	}
	a.deliver(ctx, d, editedText, approver, true)
}

// OpenEdit opens the edit modal prefilled with the current draft text. The
// draft identifier travels in the modal's private metadata, not in shared
// state, so two concurrently opened edit sessions cannot cross wires.
func (a *Approvals) OpenEdit(ctx context.Context, draftID, triggerID string) {
	d, ok := a.store.Get(draftID)
	if !ok {
		a.logger.Warn("draft not found on edit open",
			zap.String("draft_id", draftID))
		return
	}
	if err := a.notifier.OpenEditModal(ctx, triggerID, d.ID, d.DraftText, d.GuestName); err != nil {
		a.logger.Error("failed to open edit modal",
			zap.String("draft_id", draftID), zap.Error(err))
	}
}

func (a *Approvals) deliver(ctx context.Context, d *model.PendingDraft, text, approver string, edited bool) {
	log := a.logger.With(
		zap.String("draft_id", d.ID),
		zap.String("guest", d.GuestName),
		zap.String("approver", approver),
		zap.Bool("edited", edited),
	)

	err := a.messenger.SendMessage(ctx, hospitable.Target{
		ReservationID:  d.ReservationID,
		ConversationID: d.ConversationID,
	}, text)
	if err != nil {
		// Leave the draft pending so the action can be retried. The
		// Slack response was already sent, so this only reaches the
		// operator through logs.
		log.Error("guest delivery failed, draft retained", zap.Error(err))
		metrics.DeliveriesTotal.WithLabelValues("error").Inc()
		return
	}
	metrics.DeliveriesTotal.WithLabelValues("ok").Inc()

	if err := a.notifier.UpdateSent(ctx, d.SlackMessageTS, text, d.GuestName, approver, edited); err != nil {
		log.Error("failed to update draft card after send", zap.Error(err))
	}

	a.store.Delete(d.ID)

	editedLabel := "false"
	if edited {
		editedLabel = "true"
	}
	metrics.DraftsSent.WithLabelValues(editedLabel).Inc()
	log.Info("draft sent to guest")
}
