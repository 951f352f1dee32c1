package service

import (
	"context"
	"errors"
	"testing"

	"github.com/banyanstays/condobot/internal/draft"
	"github.com/banyanstays/condobot/internal/model"
	"github.com/banyanstays/condobot/pkg/logger"
)

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, req *draft.Request) (string, error) {
	f.calls++
	return f.text, f.err
}

func guestEvent() *model.GuestMessageEvent {
	return &model.GuestMessageEvent{
		MessageID:     "msg-1",
		Body:          "Is there parking?",
		SenderName:    "Ana",
		ListingName:   "Gorgeous Unit, Stunning Views!",
		Platform:      "airbnb",
		ReservationID: "res-9",
	}
}

func TestProcessHappyPath(t *testing.T) {
	notifier := &fakeNotifier{}
	gen := &fakeGenerator{text: "Aloha Ana! Yes, assigned parking."}
	store := draft.NewStore()
	p := NewPipeline(notifier, gen, store, logger.NewNop())

	p.Process(context.Background(), guestEvent())

	if len(notifier.posts) != 1 {
		t.Fatalf("channel posts = %d, want 1", len(notifier.posts))
	}
	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}
	if len(notifier.drafts) != 1 {
		t.Fatalf("draft posts = %d, want 1", len(notifier.drafts))
	}
	if store.Len() != 1 {
		t.Fatalf("stored drafts = %d, want 1", store.Len())
	}
}

func TestProcessUnsupportedListingShortCircuits(t *testing.T) {
	notifier := &fakeNotifier{}
	gen := &fakeGenerator{text: "should never run"}
	store := draft.NewStore()
	p := NewPipeline(notifier, gen, store, logger.NewNop())

	evt := guestEvent()
	evt.ListingName = "Some Other Condo"
	p.Process(context.Background(), evt)

	if len(notifier.posts) != 0 || gen.calls != 0 || store.Len() != 0 {
		t.Error("unsupported listing must produce no notification, generation, or store entry")
	}
}

func TestProcessNotificationFailureStops(t *testing.T) {
	notifier := &fakeNotifier{postErr: errors.New("slack down")}
	gen := &fakeGenerator{text: "draft"}
	store := draft.NewStore()
	p := NewPipeline(notifier, gen, store, logger.NewNop())

	p.Process(context.Background(), guestEvent())

	// The threaded draft needs the channel post's timestamp; without it
	// generation never starts.
	if gen.calls != 0 || store.Len() != 0 {
		t.Error("pipeline must stop when the channel post fails")
	}
}

func TestProcessNoDraftIsSilent(t *testing.T) {
	for _, tc := range []struct {
		name string
		gen  *fakeGenerator
	}{
		{"generation error", &fakeGenerator{err: errors.New("transport")}},
		{"empty draft", &fakeGenerator{text: ""}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			store := draft.NewStore()
			p := NewPipeline(notifier, tc.gen, store, logger.NewNop())

			p.Process(context.Background(), guestEvent())

			if len(notifier.drafts) != 0 || store.Len() != 0 {
				t.Error("no draft means no post, no store entry, no guest contact")
			}
		})
	}
}

func TestProcessAdvisoryOnlyDraft(t *testing.T) {
	notifier := &fakeNotifier{}
	gen := &fakeGenerator{text: "Aloha!"}
	store := draft.NewStore()
	p := NewPipeline(notifier, gen, store, logger.NewNop())

	evt := guestEvent()
	evt.ReservationID = ""
	evt.ConversationID = ""
	p.Process(context.Background(), evt)

	// The draft is posted for the operator but never stored: with no
	// delivery channel there is nothing to approve.
	if len(notifier.drafts) != 1 {
		t.Fatalf("draft posts = %d, want 1", len(notifier.drafts))
	}
	if store.Len() != 0 {
		t.Error("advisory drafts must not be stored")
	}
}

func TestProcessDraftPostFailureSkipsStore(t *testing.T) {
	notifier := &fakeNotifier{draftErr: errors.New("slack down")}
	gen := &fakeGenerator{text: "Aloha!"}
	store := draft.NewStore()
	p := NewPipeline(notifier, gen, store, logger.NewNop())

	p.Process(context.Background(), guestEvent())

	if store.Len() != 0 {
		t.Error("a draft whose card never posted must not be stored")
	}
}
