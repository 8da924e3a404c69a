package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1/chat/completions"
	defaultOllamaURL   = "http://localhost:11434"
	defaultLMStudioURL = "http://localhost:1234"
)

// OpenAI implements Client for OpenAI's chat completions API and for servers
// that speak the same dialect (Ollama, LM Studio).
type OpenAI struct {
	name       string
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	maxRetries int
	client     *http.Client
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(opts Options) (*OpenAI, error) {
	key := opts.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("REPOLENS_OPENAI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		name:       "openai",
		apiKey:     key,
		model:      opts.Model,
		baseURL:    baseURL,
		maxTokens:  opts.MaxTokens,
		maxRetries: opts.MaxRetries,
		client:     httpClient(opts.Timeout),
	}, nil
}

// NewOllama creates a provider for a local Ollama or LM Studio server. No API
// key is required unless the server was configured with one.
func NewOllama(opts Options) (*OpenAI, error) {
	name := strings.ToLower(opts.Provider)
	if name != "lmstudio" {
		name = "ollama"
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		if name == "lmstudio" {
			baseURL = os.Getenv("LMSTUDIO_HOST")
		} else {
			baseURL = os.Getenv("OLLAMA_HOST")
		}
	}
	if baseURL == "" {
		if name == "lmstudio" {
			baseURL = defaultLMStudioURL
		} else {
			baseURL = defaultOllamaURL
		}
	}

	// Normalize URL: strip trailing /, /v1, /v1/chat/completions
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	key := opts.APIKey
	if key == "" {
		key = os.Getenv("REPOLENS_OLLAMA_API_KEY")
	}

	return &OpenAI{
		name:       name,
		apiKey:     key,
		model:      opts.Model,
		baseURL:    baseURL + "/v1/chat/completions",
		maxTokens:  opts.MaxTokens,
		maxRetries: opts.MaxRetries,
		client:     httpClient(opts.Timeout),
	}, nil
}

func (o *OpenAI) Name() string { return o.name }

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	body := openaiRequest{
		Model:     o.model,
		Messages:  []openaiMessage{{Role: "user", Content: prompt}},
		MaxTokens: o.maxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &ModelError{Provider: o.name, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	return complete(ctx, o.name, o.maxRetries, func() (string, error) {
		header := http.Header{}
		if o.apiKey != "" {
			header.Set("Authorization", "Bearer "+o.apiKey)
		}
		respBody, err := postJSON(ctx, o.client, o.baseURL, header, payload)
		if err != nil {
			return "", err
		}

		var result openaiResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return "", fmt.Errorf("parsing response: %w", err)
		}
		if len(result.Choices) == 0 {
			return "", errors.New("no choices in response")
		}
		return result.Choices[0].Message.Content, nil
	})
}

type openaiRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}
