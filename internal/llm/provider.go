package llm

import (
	"context"
)

// Provider is the generative service used to author quiz questions.
// Each call is a single blocking request; callers own concurrency.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID names the configured model, as priced by LookupCost.
	ModelID() string
}

// Role is who authored a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a prompt.
type Message struct {
	Role    Role
	Content string
}

// Request is a prompt in provider-neutral form. A zero Temperature asks
// for the most deterministic output the backend offers.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Response is a reply in provider-neutral form. Text is returned unparsed;
// quizgen owns its interpretation.
type Response struct {
	Text  string
	Usage Usage
	// Model is the model that actually served the call, which may differ
	// from the requested alias.
	Model string
	// StopReason is one of "end", "max_tokens" or "error".
	StopReason string
}

// Usage is the token accounting reported for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds the single-turn request every quiz call uses.
func UserPrompt(system, user string, maxTokens int, temperature float64) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
