package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/banyanstays/condobot/internal/llm"
	"github.com/banyanstays/condobot/pkg/logger"
)

// scriptedClient replays a fixed sequence of turns and records every
// request it receives.
type scriptedClient struct {
	turns    []*llm.Turn
	err      error
	requests []*llm.CompletionRequest
}

func (c *scriptedClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.Turn, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	i := len(c.requests) - 1
	if i >= len(c.turns) {
		i = len(c.turns) - 1
	}
	return c.turns[i], nil
}

func (c *scriptedClient) Name() string { return "scripted" }

// recordingTools returns canned output and records executions. A per-call
// delay map lets tests scramble completion order.
type recordingTools struct {
	mu     sync.Mutex
	calls  []string
	delays map[string]time.Duration
}

func (r *recordingTools) Definitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{{Name: "lookup_property_info"}}
}

func (r *recordingTools) Execute(ctx context.Context, name string, args map[string]string) string {
	if d, ok := r.delays[name]; ok {
		time.Sleep(d)
	}
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()
	return "result of " + name
}

type noVoice struct{}

func (noVoice) VoiceExamples() string { return "" }

func newTestGenerator(client llm.Client, tools ToolRunner) *Generator {
	return NewGenerator(client, tools, noVoice{}, "", 5, logger.NewNop())
}

func TestGenerateFinalTurn(t *testing.T) {
	client := &scriptedClient{turns: []*llm.Turn{
		{Kind: llm.TurnFinal, Text: "Aloha! Check-in is at 3pm."},
	}}
	g := newTestGenerator(client, &recordingTools{})

	text, err := g.Generate(context.Background(), &Request{
		GuestMessage: "What time is check-in?",
		GuestName:    "Ana",
		PropertySlug: "banyan-tree-300",
		Booked:       true,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "Aloha! Check-in is at 3pm." {
		t.Errorf("text = %q", text)
	}
	if len(client.requests) != 1 {
		t.Errorf("completions = %d, want 1", len(client.requests))
	}
}

func TestGenerateToolCallPairing(t *testing.T) {
	calls := []llm.ToolCall{
		{ID: "call_a", Name: "alpha", Args: map[string]string{"property_slug": "banyan-tree-300"}},
		{ID: "call_b", Name: "beta"},
		{ID: "call_c", Name: "gamma"},
	}
	client := &scriptedClient{turns: []*llm.Turn{
		{Kind: llm.TurnToolUse, ToolCalls: calls},
		{Kind: llm.TurnFinal, Text: "done"},
	}}
	// Scramble completion order: the first-requested tool finishes last.
	tools := &recordingTools{delays: map[string]time.Duration{
		"alpha": 30 * time.Millisecond,
		"beta":  10 * time.Millisecond,
	}}
	g := newTestGenerator(client, tools)

	text, err := g.Generate(context.Background(), &Request{GuestName: "Ana"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "done" {
		t.Errorf("text = %q", text)
	}

	// The second completion request must carry the assistant tool-use
	// turn followed by exactly one result per call, tagged in order.
	if len(client.requests) != 2 {
		t.Fatalf("completions = %d, want 2", len(client.requests))
	}
	history := client.requests[1].Messages
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}

	assistant := history[1]
	if assistant.Role != llm.RoleAssistant || len(assistant.ToolCalls) != 3 {
		t.Fatalf("assistant turn not echoed with tool calls: %+v", assistant)
	}

	results := history[2].ToolResults
	if len(results) != len(calls) {
		t.Fatalf("results = %d, want %d", len(results), len(calls))
	}
	for i, call := range calls {
		if results[i].CallID != call.ID {
			t.Errorf("result[%d].CallID = %q, want %q", i, results[i].CallID, call.ID)
		}
		if !strings.Contains(results[i].Content, call.Name) {
			t.Errorf("result[%d] content %q does not match tool %q", i, results[i].Content, call.Name)
		}
	}
}

func TestGenerateIterationBound(t *testing.T) {
	// A model that always wants more tools never terminates naturally.
	client := &scriptedClient{turns: []*llm.Turn{
		{Kind: llm.TurnToolUse, ToolCalls: []llm.ToolCall{{ID: "c1", Name: "loop"}}},
	}}
	g := newTestGenerator(client, &recordingTools{})

	text, err := g.Generate(context.Background(), &Request{GuestName: "Ana"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "" {
		t.Errorf("expected no draft, got %q", text)
	}
	if len(client.requests) != 5 {
		t.Errorf("completions = %d, want exactly 5", len(client.requests))
	}
}

func TestGenerateProviderError(t *testing.T) {
	client := &scriptedClient{err: errors.New("transport down")}
	g := newTestGenerator(client, &recordingTools{})

	text, err := g.Generate(context.Background(), &Request{GuestName: "Ana"})
	if err == nil {
		t.Fatal("expected error")
	}
	if text != "" {
		t.Errorf("expected no draft on error, got %q", text)
	}
}

func TestGenerateEmptyFinalTextIsNoDraft(t *testing.T) {
	client := &scriptedClient{turns: []*llm.Turn{
		{Kind: llm.TurnFinal, Text: ""},
	}}
	g := newTestGenerator(client, &recordingTools{})

	text, err := g.Generate(context.Background(), &Request{GuestName: "Ana"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestSystemPromptWebsiteGate(t *testing.T) {
	client := &scriptedClient{turns: []*llm.Turn{{Kind: llm.TurnFinal, Text: "ok"}}}
	g := newTestGenerator(client, &recordingTools{})

	for _, booked := range []bool{true, false} {
		t.Run(fmt.Sprintf("booked=%v", booked), func(t *testing.T) {
			client.requests = nil
			_, err := g.Generate(context.Background(), &Request{
				GuestName: "Ana", PropertySlug: "banyan-tree-300", Booked: booked,
			})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			system := client.requests[0].System
			if booked && !strings.Contains(system, "confirmed booking") {
				t.Error("booked prompt missing website permission")
			}
			if !booked && !strings.Contains(system, "NOT yet booked") {
				t.Error("unbooked prompt missing website prohibition")
			}
		})
	}
}
