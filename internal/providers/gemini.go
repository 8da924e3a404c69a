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

const geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini implements Client for Google's Gemini API.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	maxRetries int
	client     *http.Client
}

// NewGemini creates a new Gemini provider.
func NewGemini(opts Options) (*Gemini, error) {
	key := opts.APIKey
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable is not set")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = geminiAPIURL
	}
	return &Gemini{
		apiKey:     key,
		model:      opts.Model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxTokens:  opts.MaxTokens,
		maxRetries: opts.MaxRetries,
		client:     httpClient(opts.Timeout),
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, g.model)

	body := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: prompt}},
			},
		},
	}
	if g.maxTokens > 0 {
		body.GenerationConfig = &geminiGenConfig{MaxOutputTokens: g.maxTokens}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &ModelError{Provider: g.Name(), Err: fmt.Errorf("marshaling request: %w", err)}
	}

	return complete(ctx, g.Name(), g.maxRetries, func() (string, error) {
		header := http.Header{}
		header.Set("x-goog-api-key", g.apiKey)
		respBody, err := postJSON(ctx, g.client, url, header, payload)
		if err != nil {
			return "", err
		}

		var result geminiResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return "", fmt.Errorf("parsing response: %w", err)
		}
		if len(result.Candidates) == 0 {
			return "", errors.New("no candidates in response")
		}

		var content strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			content.WriteString(part.Text)
		}
		return content.String(), nil
	})
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}
