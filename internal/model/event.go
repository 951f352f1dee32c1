// Package model defines data structures for the guest messaging service.
package model

// GuestMessageEvent is one inbound guest message extracted from a webhook
// delivery. It lives for the duration of a single pipeline run.
type GuestMessageEvent struct {
	// MessageID is the provider's message identifier, used for dedup.
	// May be empty on older payload shapes.
	MessageID string

	Body        string
	SenderName  string
	ListingName string
	Platform    string

	// Exactly one of these is normally present and determines the
	// outbound delivery endpoint. Both absent means the reply can only
	// be shown to the operator, never sent.
	ReservationID  string
	ConversationID string
}

// Deliverable reports whether a reply to this message can be addressed.
func (e *GuestMessageEvent) Deliverable() bool {
	return e.ReservationID != "" || e.ConversationID != ""
}

// WebhookPayload is the envelope Hospitable posts to the webhook endpoint.
type WebhookPayload struct {
	Action string      `json:"action"`
	Data   WebhookData `json:"data"`
}

// WebhookData carries the message fields. Hospitable has shipped several
// shapes for the sender and property names, so all variants are decoded
// and coalesced in Event().
type WebhookData struct {
	ID         string `json:"id"`
	Body       string `json:"body"`
	SenderType string `json:"sender_type"`
	Platform   string `json:"platform"`

	Sender struct {
		FirstName string `json:"first_name"`
	} `json:"sender"`
	User struct {
		FirstName string `json:"first_name"`
	} `json:"user"`

	Property struct {
		PublicName string `json:"public_name"`
		Name       string `json:"name"`
	} `json:"property"`
	Listing struct {
		Name string `json:"name"`
	} `json:"listing"`

	ReservationID  string `json:"reservation_id"`
	ConversationID string `json:"conversation_id"`
}

// Event flattens the payload into a GuestMessageEvent, coalescing the
// alternative sender and property name fields.
func (p *WebhookPayload) Event() *GuestMessageEvent {
	d := p.Data

	sender := d.Sender.FirstName
	if sender == "" {
		sender = d.User.FirstName
	}

	listing := d.Property.PublicName
	if listing == "" {
		listing = d.Property.Name
	}
	if listing == "" {
		listing = d.Listing.Name
	}

	return &GuestMessageEvent{
		MessageID:      d.ID,
		Body:           d.Body,
		SenderName:     sender,
		ListingName:    listing,
		Platform:       d.Platform,
		ReservationID:  d.ReservationID,
		ConversationID: d.ConversationID,
	}
}
