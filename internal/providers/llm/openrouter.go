package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey reports an absent OpenRouter credential, detected at the
// first call rather than at startup.
var ErrMissingAPIKey = errors.New("llm: OPENROUTER_API_KEY is not set")

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chatter produces the assistant's reply to a conversation.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

const defaultBaseURL = "https://openrouter.ai/api/v1"
const defaultModel = "openai/gpt-4o-mini"

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// OpenRouterClient proxies chat completions through OpenRouter, which speaks
// the OpenAI wire protocol.
type OpenRouterClient struct {
	client *openai.Client
	apiKey string
	model  string
	logger zerolog.Logger
}

func NewOpenRouterClient(opts Options) *OpenRouterClient {
	apiKey := strings.TrimSpace(opts.APIKey)
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	return &OpenRouterClient{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
		logger: opts.Logger,
	}
}

// Chat sends the conversation and returns the reply text.
func (c *OpenRouterClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	req := openai.ChatCompletionRequest{Model: c.model}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: chat completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	c.logger.Debug().Str("model", c.model).Int("turns", len(messages)).Int("reply_chars", len(reply)).Msg("llm: completion done")
	return reply, nil
}

var _ Chatter = (*OpenRouterClient)(nil)
