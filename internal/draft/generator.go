package draft

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/banyanstays/condobot/internal/llm"
	"github.com/banyanstays/condobot/pkg/logger"
	"github.com/banyanstays/condobot/pkg/metrics"
)

// DefaultMaxTurns bounds the request/response exchanges per draft. It is
// the primary runaway-cost guard: worst-case latency and token spend scale
// linearly with it.
const DefaultMaxTurns = 5

// ToolRunner is the capability set offered to the drafting agent.
type ToolRunner interface {
	Definitions() []llm.ToolDefinition
	Execute(ctx context.Context, name string, args map[string]string) string
}

// VoiceSource supplies the tone-calibration block for the system prompt.
type VoiceSource interface {
	VoiceExamples() string
}

// Request describes one guest message to draft a reply for.
type Request struct {
	GuestMessage string
	GuestName    string
	PropertySlug string
	// Booked gates whether the draft may reference the property website.
	// Airbnb and VRBO prohibit website mentions in pre-booking messages.
	Booked bool
}

// Generator synthesizes one reply per guest message through a bounded
// tool-augmented exchange with the drafting model. A nil result with a nil
// error means "no draft produced" and the guest must not be contacted.
type Generator struct {
	client   llm.Client
	tools    ToolRunner
	voice    VoiceSource
	model    string
	maxTurns int
	now      func() time.Time
	logger   *logger.Logger
}

// NewGenerator creates a generator. model may be empty to use the
// provider's default; maxTurns <= 0 uses DefaultMaxTurns.
func NewGenerator(client llm.Client, tools ToolRunner, voice VoiceSource, model string, maxTurns int, log *logger.Logger) *Generator {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Generator{
		client:   client,
		tools:    tools,
		voice:    voice,
		model:    model,
		maxTurns: maxTurns,
		now:      time.Now,
		logger:   log,
	}
}

// Generate runs the exchange loop and returns the finished reply text.
// An empty string with a nil error means no draft was produced.
func (g *Generator) Generate(ctx context.Context, req *Request) (string, error) {
	start := g.now()

	system := g.systemPrompt(req.PropertySlug, req.Booked)
	seed := fmt.Sprintf("Guest %q sent this message:\n\n%s", req.GuestName, req.GuestMessage)

	messages := []llm.Message{
		{Role: llm.RoleUser, Text: seed},
	}
	defs := g.tools.Definitions()

	for i := 0; i < g.maxTurns; i++ {
		turn, err := g.client.Complete(ctx, &llm.CompletionRequest{
			Model:     g.model,
			System:    system,
			Messages:  messages,
			Tools:     defs,
			MaxTokens: 1024,
		})
		if err != nil {
			metrics.RecordGeneration("error", time.Since(start).Seconds())
			return "", fmt.Errorf("draft completion: %w", err)
		}

		if turn.Kind != llm.TurnToolUse {
			outcome := "ok"
			if turn.Text == "" {
				outcome = "empty"
			}
			metrics.RecordGeneration(outcome, time.Since(start).Seconds())
			return turn.Text, nil
		}

		// The assistant turn, tool_use blocks included, must be echoed
		// back followed by one result per call, tagged with its id.
		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Text:      turn.Text,
			ToolCalls: turn.ToolCalls,
		})
		messages = append(messages, llm.Message{
			Role:        llm.RoleUser,
			ToolResults: g.runTools(ctx, turn.ToolCalls),
		})
	}

	g.logger.Warn("draft generation hit max tool iterations",
		zap.String("property", req.PropertySlug),
		zap.Int("max_turns", g.maxTurns),
	)
	metrics.RecordGeneration("exhausted", time.Since(start).Seconds())
	return "", nil
}

// runTools executes all calls from one model turn concurrently. Results
// come back in the calls' order, each tagged with the originating call id,
// regardless of completion order.
func (g *Generator) runTools(ctx context.Context, calls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call llm.ToolCall) {
			defer wg.Done()
			results[i] = llm.ToolResult{
				CallID:  call.ID,
				Content: g.tools.Execute(ctx, call.Name, call.Args),
			}
		}(i, call)
	}
	wg.Wait()

	return results
}

func (g *Generator) systemPrompt(propertySlug string, booked bool) string {
	today := g.now().Format("Monday, January 2, 2006")

	websiteRule := "This guest has NOT yet booked — they are inquiring. Do NOT mention, reference, or link to any website at all. Airbnb and VRBO prohibit this for pre-booking messages — even alluding to a website can get a listing flagged. Answer their questions directly using the information available from your tools."
	if booked {
		websiteRule = "This guest has a confirmed booking. You may share the property website (e.g. banyantree300.com) for additional info like restaurants, activities, and amenities."
	}

	voiceExamples := g.voice.VoiceExamples()

	return fmt.Sprintf(`You are Cindy, a warm and friendly vacation rental host in Kailua-Kona, Hawaii. You manage properties on the Big Island and genuinely care about every guest's experience.

Today's date is %s. Use this when answering time-sensitive questions and when searching the web — include the current year in search queries about events, schedules, or anything date-dependent.

## Tone & Style
- Be warm, friendly, and helpful — like talking to a friend
- Use Hawaiian words naturally: Aloha (hello/goodbye), Mahalo (thank you), Ohana (family), Keiki (children)
- Keep replies concise but thorough — answer the question fully without being verbose
- Be enthusiastic about Hawaii and the property
- If you don't know something specific, offer to find out rather than guessing
- Never mention that you are an AI or automated system — you are Cindy

## Voice Examples
These show how Cindy writes. Match this tone and style:

%s

## Website URLs
%s

## Tool Usage Priority
1. Always check the knowledge-base tools first (lookup_property_info, lookup_policy, lookup_restaurants, lookup_activities, lookup_technology, lookup_amenities) — they contain verified, curated information.
2. Only use web_search for topics not covered by the knowledge base (e.g. specific activities like spearfishing, tour operators, airport transport, weather, local events).
3. When searching the web, include geographic context in your query (e.g. "Kailua-Kona Big Island" or "Kona Hawaii").
4. Never share raw URLs from web search results with guests — summarize the information in your own voice.
5. If web search returns poor or no results, fall back to general knowledge and offer to find out more for the guest.

## Instructions
- Draft a reply to the guest message below
- Use the provided tools to look up property information, policies, or other details as needed
- The current property is "%s"
- Only include information you've verified via the tools — don't make up specific details
- Do NOT include a subject line or greeting prefix like "Re:" — just write the message body
- Sign off naturally (no formal signature block needed)
- Write in plain text only — no Markdown, no **bold**, no bullet lists, no headers. Your reply will be sent as a chat message, not rendered as a document.`,
		today, voiceExamples, websiteRule, propertySlug)
}
