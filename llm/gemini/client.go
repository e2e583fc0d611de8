// Package gemini provides an llm.Client backed by Google's Gemini models on
// Vertex AI.
package gemini

import (
	"context"

	"cloud.google.com/go/vertexai/genai"
	"github.com/m-mizutani/crewforge/llm"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

const (
	// DefaultModel is the model used when WithModel is not specified.
	DefaultModel = "gemini-1.5-flash"
)

// Client is a client for the Gemini API on Vertex AI.
type Client struct {
	projectID string
	location  string

	// client is the underlying Gemini client.
	client *genai.Client

	// defaultModel is the model to use for chat completions.
	// It can be overridden using WithModel option.
	defaultModel string

	// gcpOptions are additional options for Google Cloud Platform.
	gcpOptions []option.ClientOption

	// generation parameters
	temperature *float32
	maxTokens   *int32
}

// Option is a configuration option for the Gemini client.
type Option func(*Client)

// WithModel sets the model to use for text generation.
// Default: gemini-1.5-flash
func WithModel(model string) Option {
	return func(c *Client) {
		c.defaultModel = model
	}
}

// WithGoogleCloudOptions sets additional Google Cloud options, such as
// authentication credentials or endpoint overrides.
func WithGoogleCloudOptions(opts ...option.ClientOption) Option {
	return func(c *Client) {
		c.gcpOptions = append(c.gcpOptions, opts...)
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Range: 0.0 to 2.0
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.temperature = &temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int32) Option {
	return func(c *Client) {
		c.maxTokens = &maxTokens
	}
}

// New creates a new client for the Gemini API on Vertex AI.
func New(ctx context.Context, projectID, location string, options ...Option) (*Client, error) {
	if projectID == "" || location == "" {
		return nil, goerr.New("projectID and location are required",
			goerr.V("project_id", projectID), goerr.V("location", location))
	}

	client := &Client{
		projectID:    projectID,
		location:     location,
		defaultModel: DefaultModel,
	}

	for _, opt := range options {
		opt(client)
	}

	newClient, err := genai.NewClient(ctx, projectID, location, client.gcpOptions...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	client.client = newClient

	return client, nil
}

// Session is a session for the Gemini chat.
type Session struct {
	session *genai.ChatSession
	cfg     *llm.SessionConfig
}

// NewSession creates a new session for the Gemini API.
func (c *Client) NewSession(ctx context.Context, options ...llm.SessionOption) (llm.Session, error) {
	cfg := llm.NewSessionConfig(options...)

	model := c.client.GenerativeModel(c.defaultModel)
	if c.temperature != nil {
		model.SetTemperature(*c.temperature)
	}
	if c.maxTokens != nil {
		model.SetMaxOutputTokens(*c.maxTokens)
	}
	if cfg.ContentType() == llm.ContentTypeJSON {
		model.GenerationConfig.ResponseMIMEType = "application/json"
	}
	if sys := cfg.SystemPrompt(); sys != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(sys)},
		}
	}

	return &Session{
		session: model.StartChat(),
		cfg:     cfg,
	}, nil
}

// GenerateContent sends the prompt and returns the generated response.
func (s *Session) GenerateContent(ctx context.Context, prompt string) (*llm.Response, error) {
	resp, err := s.session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send message")
	}

	response := &llm.Response{}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			text, ok := part.(genai.Text)
			if !ok {
				continue
			}
			out := string(text)
			if s.cfg.ContentType() == llm.ContentTypeJSON {
				out = llm.ExtractJSON(out)
			}
			response.Texts = append(response.Texts, out)
		}
	}

	return response, nil
}
