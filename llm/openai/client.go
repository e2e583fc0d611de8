// Package openai provides an llm.Client backed by OpenAI chat models.
package openai

import (
	"context"

	"github.com/m-mizutani/crewforge/llm"
	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"
)

// generationParameters represents the parameters for text generation.
type generationParameters struct {
	// Temperature controls randomness in the output.
	Temperature float32

	// TopP controls diversity via nucleus sampling.
	TopP float32

	// MaxTokens limits the number of tokens to generate.
	MaxTokens int
}

// Client is a client for the OpenAI API.
type Client struct {
	// client is the underlying OpenAI client.
	client *openai.Client

	// defaultModel is the model to use for chat completions.
	// It can be overridden using WithModel option.
	defaultModel string

	// generation parameters
	params generationParameters
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model to use for chat completions.
// Default: gpt-4o
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Range: 0.0 to 2.0
// Default: 0.7
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithTopP sets the top_p parameter for text generation.
// Default: 1.0
func WithTopP(topP float32) Option {
	return func(c *Client) {
		c.params.TopP = topP
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Client) {
		c.params.MaxTokens = maxTokens
	}
}

// New creates a new client for the OpenAI API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	client := &Client{
		defaultModel: openai.GPT4o,
		params: generationParameters{
			Temperature: 0.7,
			TopP:        1.0,
		},
	}

	for _, opt := range options {
		opt(client)
	}

	client.client = openai.NewClient(apiKey)

	return client, nil
}

// Session is a session for the OpenAI chat.
type Session struct {
	client       *openai.Client
	defaultModel string
	cfg          *llm.SessionConfig
	params       generationParameters

	// messages stores the conversation history.
	messages []openai.ChatCompletionMessage
}

// NewSession creates a new session for the OpenAI API.
func (c *Client) NewSession(ctx context.Context, options ...llm.SessionOption) (llm.Session, error) {
	cfg := llm.NewSessionConfig(options...)

	session := &Session{
		client:       c.client,
		defaultModel: c.defaultModel,
		cfg:          cfg,
		params:       c.params,
	}

	if sys := cfg.SystemPrompt(); sys != "" {
		session.messages = append(session.messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sys,
		})
	}

	return session, nil
}

// GenerateContent sends the prompt and returns the generated response. When
// the session requests JSON the native JSON response format is used.
func (s *Session) GenerateContent(ctx context.Context, prompt string) (*llm.Response, error) {
	s.messages = append(s.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       s.defaultModel,
		Messages:    s.messages,
		Temperature: s.params.Temperature,
		TopP:        s.params.TopP,
		MaxTokens:   s.params.MaxTokens,
	}
	if s.cfg.ContentType() == llm.ContentTypeJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, goerr.New("no choices in response")
	}

	message := resp.Choices[0].Message
	s.messages = append(s.messages, message)

	text := message.Content
	if s.cfg.ContentType() == llm.ContentTypeJSON {
		text = llm.ExtractJSON(text)
	}

	return &llm.Response{
		Texts: []string{text},
	}, nil
}
