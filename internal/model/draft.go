package model

import "time"

// PendingDraft is a generated reply awaiting a human decision. It is the
// only mutable persistent entity in the system and lives in process memory
// until it is sent, evicted, or the process restarts.
type PendingDraft struct {
	// ID is a freshly generated opaque identifier, never reused.
	ID string

	// Delivery target. Exactly one of these is set for deliverable
	// drafts; the reservation endpoint wins when both are present.
	ReservationID  string
	ConversationID string

	GuestName string
	DraftText string

	// Slack references needed to update the approval card after a
	// decision.
	SlackThreadTS  string
	SlackMessageTS string

	CreatedAt time.Time
}
