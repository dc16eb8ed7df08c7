package llm

import (
	"errors"
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterAppTitle       = "evalai"
)

// OpenRouterProvider generates through OpenRouter's OpenAI-compatible
// endpoint. Model IDs are vendor-qualified ("google/gemini-2.0-flash-exp")
// and are passed through unmapped.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates the provider. Requests carry an X-Title
// header so usage shows up under this app on the OpenRouter dashboard.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	hc := &http.Client{Transport: titleTransport{next: http.DefaultTransport}}
	return &OpenRouterProvider{OpenAIProvider: &OpenAIProvider{
		client: newOpenAIClient(cfg.APIKey, baseURL, hc),
		model:  cfg.Model,
	}}, nil
}

// titleTransport stamps the app title on every request.
type titleTransport struct {
	next http.RoundTripper
}

func (t titleTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Title", openRouterAppTitle)
	return t.next.RoundTrip(r)
}
