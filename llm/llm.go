// Package llm defines the client abstraction for the language model
// providers that back the phase executors. Provider implementations live in
// the subpackages claude, openai and gemini.
package llm

import "context"

// ContentType is the expected format of generated content.
type ContentType string

const (
	ContentTypeText ContentType = "text"
	ContentTypeJSON ContentType = "application/json"
)

// Response is a general response type for each LLM.
type Response struct {
	Texts []string
}

// Session is a generation session. Sessions are stateless with respect to
// each other; one session carries one conversation.
type Session interface {
	GenerateContent(ctx context.Context, prompt string) (*Response, error)
}

// Client is a client for an LLM service.
type Client interface {
	NewSession(ctx context.Context, options ...SessionOption) (Session, error)
}

// SessionConfig holds per-session settings shared by all providers.
type SessionConfig struct {
	contentType  ContentType
	systemPrompt string
}

// NewSessionConfig builds a SessionConfig from options. Intended for
// provider implementations.
func NewSessionConfig(options ...SessionOption) *SessionConfig {
	cfg := &SessionConfig{
		contentType: ContentTypeText,
	}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

// ContentType returns the requested content type of the session.
func (c *SessionConfig) ContentType() ContentType {
	return c.contentType
}

// SystemPrompt returns the system prompt of the session.
func (c *SessionConfig) SystemPrompt() string {
	return c.systemPrompt
}

// SessionOption configures a session.
type SessionOption func(*SessionConfig)

// WithSessionContentType sets the expected content type of generated output.
// Providers without a native structured output mode extract the content from
// the raw response instead.
func WithSessionContentType(contentType ContentType) SessionOption {
	return func(c *SessionConfig) {
		c.contentType = contentType
	}
}

// WithSessionSystemPrompt sets the system prompt of the session.
func WithSessionSystemPrompt(systemPrompt string) SessionOption {
	return func(c *SessionConfig) {
		c.systemPrompt = systemPrompt
	}
}
