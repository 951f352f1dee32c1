// Package service provides the guest-message pipeline and the approval
// workflow.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/banyanstays/condobot/internal/draft"
	"github.com/banyanstays/condobot/internal/hospitable"
	"github.com/banyanstays/condobot/internal/model"
	"github.com/banyanstays/condobot/internal/property"
	"github.com/banyanstays/condobot/pkg/logger"
	"github.com/banyanstays/condobot/pkg/metrics"
)

// Notifier is the chat surface the operator sees: the guest-message post,
// the draft card, the post-decision update, and the edit modal.
type Notifier interface {
	PostGuestMessage(ctx context.Context, evt *model.GuestMessageEvent) (string, error)
	PostDraft(ctx context.Context, threadTS, draftID, guestName, text string, withActions bool) (string, error)
	UpdateSent(ctx context.Context, messageTS, text, guestName, approver string, edited bool) error
	OpenEditModal(ctx context.Context, triggerID, draftID, draftText, guestName string) error
}

// GuestMessenger delivers an approved reply to the guest.
type GuestMessenger interface {
	SendMessage(ctx context.Context, target hospitable.Target, body string) error
}

// DraftGenerator produces one reply text per guest message. An empty
// string with a nil error means no draft was produced.
type DraftGenerator interface {
	Generate(ctx context.Context, req *draft.Request) (string, error)
}

// Pipeline runs one inbound guest message from property resolution through
// the posted draft card. It is invoked detached from the webhook response;
// every failure is logged, never reported upstream.
type Pipeline struct {
	notifier  Notifier
	generator DraftGenerator
	store     *draft.Store
	logger    *logger.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(notifier Notifier, generator DraftGenerator, store *draft.Store, log *logger.Logger) *Pipeline {
	return &Pipeline{
		notifier:  notifier,
		generator: generator,
		store:     store,
		logger:    log,
	}
}

// Process handles one guest message event end to end.
func (p *Pipeline) Process(ctx context.Context, evt *model.GuestMessageEvent) {
	ctx, span := otel.Tracer("condobot/pipeline").Start(ctx, "pipeline.process")
	defer span.End()

	prop := property.Resolve(evt.ListingName)
	span.SetAttributes(attribute.String("property.slug", prop.Slug))

	log := p.logger.With(
		zap.String("listing", evt.ListingName),
		zap.String("property", prop.Slug),
		zap.String("guest", evt.SenderName),
	)

	if !prop.Supported {
		log.Info("listing not supported, dropping event")
		metrics.RecordWebhook("hospitable", "unsupported_listing")
		return
	}

	// The draft is posted as a threaded reply, so the channel post must
	// complete first to yield the thread timestamp.
	threadTS, err := p.notifier.PostGuestMessage(ctx, evt)
	if err != nil {
		log.Error("failed to notify channel", zap.Error(err))
		return
	}

	text, err := p.generator.Generate(ctx, &draft.Request{
		GuestMessage: evt.Body,
		GuestName:    evt.SenderName,
		PropertySlug: prop.Slug,
		Booked:       evt.ReservationID != "",
	})
	if err != nil {
		log.Error("draft generation failed", zap.Error(err))
		return
	}
	if text == "" {
		log.Warn("no draft produced, guest will not be contacted automatically")
		return
	}

	if !evt.Deliverable() {
		// Advisory-only: the operator sees the draft but there is no
		// channel to send it through, so no buttons and no store entry.
		if _, err := p.notifier.PostDraft(ctx, threadTS, "", evt.SenderName, text, false); err != nil {
			log.Error("failed to post advisory draft", zap.Error(err))
		}
		return
	}

	d := &model.PendingDraft{
		ID:             uuid.NewString(),
		ReservationID:  evt.ReservationID,
		ConversationID: evt.ConversationID,
		GuestName:      evt.SenderName,
		DraftText:      text,
		SlackThreadTS:  threadTS,
		CreatedAt:      time.Now(),
	}

	msgTS, err := p.notifier.PostDraft(ctx, threadTS, d.ID, evt.SenderName, text, true)
	if err != nil {
		log.Error("failed to post draft card", zap.Error(err))
		return
	}
	d.SlackMessageTS = msgTS

	if err := p.store.Create(d); err != nil {
		log.Error("failed to store pending draft", zap.Error(err))
		return
	}

	metrics.DraftsCreated.Inc()
	log.Info("pending draft created", zap.String("draft_id", d.ID))
}
