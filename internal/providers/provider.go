package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// Client sends a prompt to a language model and returns its raw text answer.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Options selects and configures a provider.
type Options struct {
	Provider   string
	Model      string
	APIKey     string // falls back to the provider's environment variable
	BaseURL    string
	MaxTokens  int
	MaxRetries int
	Timeout    time.Duration
}

// New creates a provider by name.
func New(opts Options) (Client, error) {
	switch strings.ToLower(opts.Provider) {
	case "openai", "":
		return NewOpenAI(opts)
	case "anthropic":
		return NewAnthropic(opts)
	case "gemini", "google":
		return NewGemini(opts)
	case "ollama", "lmstudio":
		return NewOllama(opts)
	default:
		return nil, fmt.Errorf("unknown provider: %s", opts.Provider)
	}
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// complete runs send under the retry policy and normalises every failure
// into a *ModelError.
func complete(ctx context.Context, name string, maxRetries int, send func() (string, error)) (string, error) {
	var content string
	err := retryWithBackoff(ctx, maxRetries, func() error {
		var err error
		content, err = send()
		return err
	})
	if err != nil {
		return "", &ModelError{Provider: name, Err: err}
	}
	if strings.TrimSpace(content) == "" {
		return "", &ModelError{Provider: name, Err: errEmptyContent}
	}
	return content, nil
}
