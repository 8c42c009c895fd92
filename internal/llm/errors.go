package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse indicates the model returned no text at all.
var ErrEmptyResponse = errors.New("empty model response")

// ErrDocumentNotSupported indicates the provider cannot attach inline
// documents to a request.
var ErrDocumentNotSupported = errors.New("provider does not support inline documents")

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	Err error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("AI provider unavailable: %v", e.Err)
	}
	return "AI provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }
