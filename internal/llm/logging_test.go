package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/asadullah4bls/evalai/internal/store"
)

// recordingRepo captures appended LLM events. Other EventRepo methods are
// not used by the decorators.
type recordingRepo struct {
	store.EventRepo
	events    []store.LLMRequestEventData
	appendErr error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.appendErr
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Text:  "Q1. What is osmosis?",
		Usage: Usage{InputTokens: 12, OutputTokens: 7},
	})
	p := WithLogging(mock, "mock", repo, nil)

	ctx := WithPurpose(context.Background(), PurposeQuizMCQ)
	resp, err := p.Generate(ctx, UserPrompt("be terse", "make a quiz", 100, 0.2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "Q1. What is osmosis?" {
		t.Errorf("text = %q", resp.Text)
	}

	if len(repo.events) != 1 {
		t.Fatalf("events = %d, want 1", len(repo.events))
	}
	ev := repo.events[0]
	if !ev.Success || ev.Purpose != PurposeQuizMCQ || ev.Provider != "mock" {
		t.Errorf("event = %+v", ev)
	}
	if ev.InputTokens != 12 || ev.OutputTokens != 7 {
		t.Errorf("tokens = %d/%d", ev.InputTokens, ev.OutputTokens)
	}
	if !strings.Contains(ev.RequestBody, "[system]\nbe terse") {
		t.Errorf("request body = %q", ev.RequestBody)
	}
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Err: errors.New("boom")})
	p := WithLogging(mock, "mock", repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage != "boom" {
		t.Errorf("events = %+v", repo.events)
	}
}

func TestLoggingProvider_AppendFailureIsNotReturned(t *testing.T) {
	repo := &recordingRepo{appendErr: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), "mock", repo, nil)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("append failure leaked: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestLoggingEmbedder_Records(t *testing.T) {
	repo := &recordingRepo{}
	e := WithEmbedLogging(NewMockEmbedder(4), "mock", repo, nil)

	ctx := WithPurpose(context.Background(), PurposeDedup)
	if _, err := e.Embed(ctx, []string{"cell wall", "cell membrane"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("events = %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Purpose != PurposeDedup || ev.Model != "mock-embed" {
		t.Errorf("event = %+v", ev)
	}
	if !strings.HasPrefix(ev.RequestBody, "[embed] 2 inputs") {
		t.Errorf("request body = %q", ev.RequestBody)
	}
	if ev.ResponseBody != "2 vectors x 4 dims" {
		t.Errorf("response body = %q", ev.ResponseBody)
	}
}
