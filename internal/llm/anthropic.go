package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-20241022"

// AnthropicClient is the Anthropic drafting-model client.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicClient{client: client}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// Complete sends one completion request and maps the response onto the
// neutral turn representation.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (*Turn, error) {
	model := req.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(model),
		MaxTokens: anthropic.F(int64(maxTokens)),
		Messages:  anthropic.F(toAnthropicMessages(req.Messages)),
	}

	if req.System != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			{
				Type: anthropic.F(anthropic.TextBlockParamTypeText),
				Text: anthropic.F(req.System),
			},
		})
	}

	if len(req.Tools) > 0 {
		tools := make([]anthropic.ToolParam, len(req.Tools))
		for i, t := range req.Tools {
			tools[i] = anthropic.ToolParam{
				Name:        anthropic.F(t.Name),
				Description: anthropic.F(t.Description),
				InputSchema: anthropic.F[interface{}](t.Schema),
			}
		}
		params.Tools = anthropic.F(tools)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic completion: %w", err)
	}

	return anthropicTurn(resp), nil
}

func toAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, len(messages))
	for i, msg := range messages {
		var blocks []anthropic.MessageParamContentUnion

		if msg.Text != "" {
			blocks = append(blocks, anthropic.TextBlockParam{
				Type: anthropic.F(anthropic.TextBlockParamTypeText),
				Text: anthropic.F(msg.Text),
			})
		}

		for _, tc := range msg.ToolCalls {
			blocks = append(blocks, anthropic.ToolUseBlockParam{
				Type:  anthropic.F(anthropic.ToolUseBlockParamTypeToolUse),
				ID:    anthropic.F(tc.ID),
				Name:  anthropic.F(tc.Name),
				Input: anthropic.F[interface{}](toAnyMap(tc.Args)),
			})
		}

		for _, tr := range msg.ToolResults {
			blocks = append(blocks, anthropic.ToolResultBlockParam{
				Type:      anthropic.F(anthropic.ToolResultBlockParamTypeToolResult),
				ToolUseID: anthropic.F(tr.CallID),
				Content: anthropic.F([]anthropic.ToolResultBlockParamContentUnion{
					anthropic.TextBlockParam{
						Type: anthropic.F(anthropic.TextBlockParamTypeText),
						Text: anthropic.F(tr.Content),
					},
				}),
			})
		}

		role := anthropic.MessageParamRoleUser
		if msg.Role == RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}

		out[i] = anthropic.MessageParam{
			Role:    anthropic.F(role),
			Content: anthropic.F(blocks),
		}
	}
	return out
}

func anthropicTurn(resp *anthropic.Message) *Turn {
	turn := &Turn{Kind: TurnFinal}

	for _, block := range resp.Content {
		switch block.Type {
		case anthropic.ContentBlockTypeText:
			if turn.Text == "" {
				turn.Text = block.Text
			}
		case anthropic.ContentBlockTypeToolUse:
			raw, _ := json.Marshal(block.Input)
			turn.ToolCalls = append(turn.ToolCalls, ToolCall{
				ID:   block.ID,
				Name: block.Name,
				Args: decodeArgs(raw),
			})
		}
	}

	if resp.StopReason == anthropic.MessageStopReasonToolUse && len(turn.ToolCalls) > 0 {
		turn.Kind = TurnToolUse
	}

	return turn
}

func decodeArgs(raw json.RawMessage) map[string]string {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}

	args := make(map[string]string, len(generic))
	for k, v := range generic {
		if s, ok := v.(string); ok {
			args[k] = s
		} else {
			args[k] = fmt.Sprint(v)
		}
	}
	return args
}

func toAnyMap(args map[string]string) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
