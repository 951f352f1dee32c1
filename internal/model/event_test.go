package model

import (
	"encoding/json"
	"testing"
)

func TestEventCoalescesPayloadVariants(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantSender  string
		wantListing string
	}{
		{
			name:        "current shape",
			raw:         `{"action":"message.created","data":{"id":"m1","body":"hi","sender_type":"guest","sender":{"first_name":"Ana"},"property":{"public_name":"Gorgeous Unit, Stunning Views!"}}}`,
			wantSender:  "Ana",
			wantListing: "Gorgeous Unit, Stunning Views!",
		},
		{
			name:        "legacy user and property name",
			raw:         `{"action":"message.created","data":{"id":"m2","body":"hi","sender_type":"guest","user":{"first_name":"Ben"},"property":{"name":"banyan tree"}}}`,
			wantSender:  "Ben",
			wantListing: "banyan tree",
		},
		{
			name:        "listing fallback",
			raw:         `{"action":"message.created","data":{"id":"m3","body":"hi","sender_type":"guest","listing":{"name":"banyan tree"}}}`,
			wantSender:  "",
			wantListing: "banyan tree",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p WebhookPayload
			if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			evt := p.Event()
			if evt.SenderName != tt.wantSender {
				t.Errorf("SenderName = %q, want %q", evt.SenderName, tt.wantSender)
			}
			if evt.ListingName != tt.wantListing {
				t.Errorf("ListingName = %q, want %q", evt.ListingName, tt.wantListing)
			}
		})
	}
}

func TestDeliverable(t *testing.T) {
	if (&GuestMessageEvent{}).Deliverable() {
		t.Error("event with no target should not be deliverable")
	}
	if !(&GuestMessageEvent{ReservationID: "r1"}).Deliverable() {
		t.Error("reservation target should be deliverable")
	}
	if !(&GuestMessageEvent{ConversationID: "c1"}).Deliverable() {
		t.Error("conversation target should be deliverable")
	}
}
