package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient is the OpenAI drafting-model client, using function calling
// for the tool protocol.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	return &OpenAIClient{client: openai.NewClient(apiKey)}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Complete sends one completion request and maps the response onto the
// neutral turn representation.
func (c *OpenAIClient) Complete(ctx context.Context, req *CompletionRequest) (*Turn, error) {
	model := req.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, toOpenAIMessages(req.Messages)...)

	var tools []openai.Tool
	for _, t := range req.Tools {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Schema,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
		Tools:     tools,
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return &Turn{Kind: TurnFinal}, nil
	}

	choice := resp.Choices[0]
	turn := &Turn{Kind: TurnFinal, Text: choice.Message.Content}

	if choice.FinishReason == openai.FinishReasonToolCalls && len(choice.Message.ToolCalls) > 0 {
		turn.Kind = TurnToolUse
		for _, tc := range choice.Message.ToolCalls {
			turn.ToolCalls = append(turn.ToolCalls, ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: decodeArgs(json.RawMessage(tc.Function.Arguments)),
			})
		}
	}

	return turn, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage
	for _, msg := range messages {
		// A tool-results entry becomes one "tool" message per result.
		if len(msg.ToolResults) > 0 {
			for _, tr := range msg.ToolResults {
				out = append(out, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					ToolCallID: tr.CallID,
					Content:    tr.Content,
				})
			}
			continue
		}

		m := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: msg.Text,
		}
		if msg.Role == RoleAssistant {
			m.Role = openai.ChatMessageRoleAssistant
			for _, tc := range msg.ToolCalls {
				args, _ := json.Marshal(toAnyMap(tc.Args))
				m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
		}
		out = append(out, m)
	}
	return out
}

// NewClient creates a drafting-model client for the configured provider.
func NewClient(provider, anthropicKey, openaiKey string) (Client, error) {
	switch provider {
	case "openai":
		return NewOpenAIClient(openaiKey)
	default:
		return NewAnthropicClient(anthropicKey)
	}
}
