// Package claude provides an llm.Client backed by Anthropic's Claude models.
package claude

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/crewforge/llm"
	"github.com/m-mizutani/goerr/v2"
)

// generationParameters represents the parameters for text generation.
type generationParameters struct {
	// Temperature controls randomness in the output.
	Temperature float64

	// TopP controls diversity via nucleus sampling.
	TopP float64

	// MaxTokens limits the number of tokens to generate.
	MaxTokens int64
}

// Client is a client for the Claude API.
type Client struct {
	// client is the underlying Claude client.
	client *anthropic.Client

	// defaultModel is the model to use for chat completions.
	// It can be overridden using WithModel option.
	defaultModel anthropic.Model

	// generation parameters
	params generationParameters
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model to use for chat completions.
// Default: anthropic.ModelClaude3_5SonnetLatest
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = anthropic.Model(modelName)
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Range: 0.0 to 1.0
// Default: 0.7
func WithTemperature(temp float64) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithTopP sets the top_p parameter for text generation.
// Range: 0.0 to 1.0
// Default: 1.0
func WithTopP(topP float64) Option {
	return func(c *Client) {
		c.params.TopP = topP
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
// Default: 4096
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		c.params.MaxTokens = maxTokens
	}
}

// New creates a new client for the Claude API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	client := &Client{
		defaultModel: anthropic.Model("claude-3-5-sonnet-latest"),
		params: generationParameters{
			Temperature: 0.7,
			TopP:        1.0,
			MaxTokens:   4096,
		},
	}

	for _, opt := range options {
		opt(client)
	}

	newClient := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	client.client = &newClient

	return client, nil
}

// Session is a session for the Claude chat. It maintains the conversation
// state and handles message generation.
type Session struct {
	client       *anthropic.Client
	defaultModel anthropic.Model
	cfg          *llm.SessionConfig
	params       generationParameters

	// messages stores the conversation history.
	messages []anthropic.MessageParam
}

// NewSession creates a new session for the Claude API.
func (c *Client) NewSession(ctx context.Context, options ...llm.SessionOption) (llm.Session, error) {
	return &Session{
		client:       c.client,
		defaultModel: c.defaultModel,
		cfg:          llm.NewSessionConfig(options...),
		params:       c.params,
	}, nil
}

// GenerateContent sends the prompt and returns the generated response.
// Claude has no native structured output mode, so when the session requests
// JSON the payload is extracted from the raw text.
func (s *Session) GenerateContent(ctx context.Context, prompt string) (*llm.Response, error) {
	s.messages = append(s.messages, anthropic.NewUserMessage(
		anthropic.NewTextBlock(prompt),
	))

	params := anthropic.MessageNewParams{
		Model:       s.defaultModel,
		MaxTokens:   s.params.MaxTokens,
		Temperature: anthropic.Float(s.params.Temperature),
		TopP:        anthropic.Float(s.params.TopP),
		Messages:    s.messages,
	}
	if sys := s.cfg.SystemPrompt(); sys != "" {
		params.System = []anthropic.TextBlockParam{{Text: sys}}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create message")
	}

	s.messages = append(s.messages, resp.ToParam())

	response := &llm.Response{}
	for _, content := range resp.Content {
		if content.Type != "text" {
			continue
		}
		text := content.Text
		if s.cfg.ContentType() == llm.ContentTypeJSON {
			text = llm.ExtractJSON(text)
		}
		response.Texts = append(response.Texts, text)
	}

	return response, nil
}
