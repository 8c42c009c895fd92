package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/saulo-duarte/luma-lambda/internal/config"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements Provider using the Google Gemini SDK.
// The client reads GEMINI_API_KEY from the environment.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	log := config.WithContext(ctx)

	cfg := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		cfg.Temperature = &temp
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	var parts []*genai.Part
	if len(req.Document) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: req.DocumentMIME, Data: req.Document},
		})
	}
	parts = append(parts, &genai.Part{Text: req.User})
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		log.WithError(err).Error("[LLM] Gemini generation failed")
		return nil, mapGeminiError(err)
	}

	raw := result.Text()
	log.Debugf("[LLM] Gemini raw response:\n%s", raw)
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	resp := &Response{Content: raw, Model: p.model}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return &ErrRateLimit{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
