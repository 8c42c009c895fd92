package llm

import (
	"context"
	"errors"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"PlainJSON", `{"a":1}`, `{"a":1}`},
		{"JSONFence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"BareFence", "```\n[1,2]\n```", `[1,2]`},
		{"LeadingWhitespace", "  \n```json\n{}\n```  ", `{}`},
		{"Prose", "plain explanation text", "plain explanation text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: `{"a":1}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: `{"b":2}`},
	)

	resp1, err := mock.Generate(context.Background(), Request{User: "first"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Content != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), Request{User: "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Content != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: `{}`})

	_, _ = mock.Generate(context.Background(), Request{System: "sys", User: "hello"})

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestPricing(t *testing.T) {
	t.Run("KnownModel", func(t *testing.T) {
		c := LookupCost("gemini-2.0-flash")
		if c == nil {
			t.Fatal("expected pricing for gemini-2.0-flash")
		}
		got := c.Cost(1_000_000, 1_000_000)
		want := 0.1 + 0.4
		if got != want {
			t.Errorf("Cost(1M, 1M) = %v, want %v", got, want)
		}
	})

	t.Run("UnknownModel", func(t *testing.T) {
		if c := LookupCost("mock"); c != nil {
			t.Errorf("expected nil pricing for unknown model, got %+v", c)
		}
	})
}
