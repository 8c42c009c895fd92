package llm

import (
	"context"
	"strings"
)

// Provider is the abstraction every AI feature talks to. Implementations
// wrap a vendor SDK and normalize its request/response shapes.
type Provider interface {
	// Generate sends a prompt to the model and returns its raw text output.
	// When the request carries a Document, providers that cannot attach
	// inline documents return ErrDocumentNotSupported.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// User is the user-turn prompt.
	User string

	// Document is an optional inline attachment (a PDF in practice).
	Document     []byte
	DocumentMIME string

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness. Range 0.0 to 1.0, zero means default.
	Temperature float64
}

// Response holds the model's output.
type Response struct {
	// Content is the raw text returned by the model. Callers that expect
	// JSON should pass it through StripFences before unmarshalling.
	Content string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the model that served the request.
	Model string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// StripFences removes the markdown code fences models wrap JSON in.
func StripFences(s string) string {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(strings.Trim(clean, "`"))
}
