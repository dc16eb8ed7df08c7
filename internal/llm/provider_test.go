package llm

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "Q1. first", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "Q1. second"},
	)

	resp1, err := mock.Generate(context.Background(), UserPrompt("", "first", 100, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != "Q1. first" {
		t.Fatalf("got %q, want %q", resp1.Text, "Q1. first")
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), UserPrompt("", "second", 100, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "Q1. second" {
		t.Fatalf("got %q, want %q", resp2.Text, "Q1. second")
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "ok"})

	_, _ = mock.Generate(context.Background(), UserPrompt("sys", "hello", 50, 0.3))
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	got := mock.Calls[0]
	if got.System != "sys" || got.Messages[0].Content != "hello" || got.Temperature != 0.3 {
		t.Errorf("recorded request = %+v", got)
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(32)
	e.Vectors["pinned"] = []float32{1, 0}

	vecs, err := e.Embed(context.Background(), []string{"cell wall", "Cell  Wall", "pinned", "nucleus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 4 {
		t.Fatalf("got %d vectors, want 4", len(vecs))
	}
	for i := range vecs[0] {
		if vecs[0][i] != vecs[1][i] {
			t.Fatalf("same words embedded differently at dim %d", i)
		}
	}
	if len(vecs[2]) != 2 || vecs[2][0] != 1 {
		t.Errorf("pinned vector not used: %v", vecs[2])
	}
	if e.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1", e.CallCount())
	}
}

func TestMockEmbedder_Error(t *testing.T) {
	e := NewMockEmbedder(8)
	e.Err = errors.New("offline")
	if _, err := e.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPurpose(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("default purpose = %q, want %q", got, "unknown")
	}
	ctx := WithPurpose(context.Background(), PurposeQuizMCQ)
	if got := PurposeFrom(ctx); got != PurposeQuizMCQ {
		t.Errorf("purpose = %q, want %q", got, PurposeQuizMCQ)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("cost = %v, want 0.75", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Error("expected nil for unknown model")
	}
	if LookupCost("gemini-2.5-flash-001") == nil {
		t.Error("versioned id should fall back to its family price")
	}
}
