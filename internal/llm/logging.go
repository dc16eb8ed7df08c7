package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asadullah4bls/evalai/internal/logging"
	"github.com/asadullah4bls/evalai/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	log       *logging.Logger
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, providerName string, repo store.EventRepo, log *logging.Logger) Provider {
	return &LoggingProvider{
		inner:     p,
		provider:  providerName,
		eventRepo: repo,
		log:       logging.OrNop(log).With("component", "llm"),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = resp.Text
		if resp.StopReason == "max_tokens" {
			l.log.Warn("LLM response truncated", "purpose", purpose, "max_tokens", req.MaxTokens)
		}
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.record(ctx, data)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// record stores the event; a failure is logged, never returned.
func (l *LoggingProvider) record(ctx context.Context, data store.LLMRequestEventData) {
	if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
		l.log.Warn("failed to log LLM request event", "error", logErr)
	}
	l.log.Debug("llm request", "purpose", data.Purpose, "model", data.Model,
		"latency_ms", data.LatencyMs, "success", data.Success)
}

// LoggingEmbedder records every embedding call as an event.
type LoggingEmbedder struct {
	inner     Embedder
	provider  string
	eventRepo store.EventRepo
	log       *logging.Logger
}

// WithEmbedLogging wraps an Embedder with event logging.
func WithEmbedLogging(e Embedder, providerName string, repo store.EventRepo, log *logging.Logger) Embedder {
	return &LoggingEmbedder{
		inner:     e,
		provider:  providerName,
		eventRepo: repo,
		log:       logging.OrNop(log).With("component", "llm"),
	}
}

func (l *LoggingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := l.inner.Embed(ctx, texts)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: fmt.Sprintf("[embed] %d inputs\n%s", len(texts), strings.Join(texts, "\n")),
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	} else if len(vecs) > 0 {
		data.ResponseBody = fmt.Sprintf("%d vectors x %d dims", len(vecs), len(vecs[0]))
	}

	if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
		l.log.Warn("failed to log embedding event", "error", logErr)
	}
	return vecs, err
}

func (l *LoggingEmbedder) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}
