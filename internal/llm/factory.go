package llm

import (
	"context"
	"fmt"
	"os"
)

// NewProviderFromEnv builds the Provider selected by LLM_PROVIDER.
// Supported values: "gemini" (default), "openai", "mock".
// LLM_MODEL overrides the provider's default model.
func NewProviderFromEnv(ctx context.Context) (Provider, error) {
	name := os.Getenv("LLM_PROVIDER")
	if name == "" {
		name = "gemini"
	}
	model := os.Getenv("LLM_MODEL")

	switch name {
	case "gemini":
		return NewGeminiProvider(ctx, model)
	case "openai":
		return NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), model)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", name)
	}
}
