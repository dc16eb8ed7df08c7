package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"
)

const (
	defaultOllamaBaseURL    = "http://localhost:11434"
	defaultOllamaEmbedModel = "nomic-embed-text"
)

// OllamaEmbedder implements Embedder against a local Ollama server.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

// NewOllamaEmbedder creates an embedder. Empty values select
// http://localhost:11434 and nomic-embed-text.
func NewOllamaEmbedder(cfg EmbedConfig, timeout time.Duration) (*OllamaEmbedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	model := cfg.Model
	if model == "" {
		model = defaultOllamaEmbedModel
	}

	return &OllamaEmbedder{
		client: ollama.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.Embed(ctx, &ollama.EmbedRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, mapOllamaError(err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("got %d embeddings for %d inputs", len(resp.Embeddings), len(texts)),
		}
	}
	return resp.Embeddings, nil
}

func (e *OllamaEmbedder) ModelID() string {
	return e.model
}

func mapOllamaError(err error) error {
	var se ollama.StatusError
	if errors.As(err, &se) {
		return statusError(se.StatusCode, "", err)
	}
	return &ErrProviderUnavailable{Err: err}
}
