// Package llm provides text-generation providers for batch name
// classification.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// MaxTokens caps the completion length for classification responses.
const MaxTokens = 2048

// Defaults when the config does not choose a provider or model.
const (
	DefaultModel          = "llama-3.1-8b-instant"
	DefaultBaseURL        = "https://api.groq.com/openai/v1"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// Provider is implemented by text-generation backends.
type Provider interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, prompt string) (string, error)
	// IsConfigured reports whether the provider has what it needs to run.
	IsConfigured() bool
}

// NewProvider selects a backend by name: "anthropic" for the Anthropic
// messages API, anything else for an OpenAI-compatible chat completions
// endpoint (OpenAI, Groq). API keys come from the environment.
func NewProvider(provider, model, baseURL string) Provider {
	switch strings.ToLower(provider) {
	case "anthropic":
		if model == "" {
			model = DefaultAnthropicModel
		}
		return NewAnthropicProvider(model, os.Getenv("ANTHROPIC_API_KEY"))
	default:
		if model == "" {
			model = DefaultModel
		}
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		return NewOpenAIProvider(model, baseURL, key)
	}
}

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	model   string
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewOpenAIProvider creates an OpenAI-compatible provider.
func NewOpenAIProvider(model, baseURL, apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// IsConfigured reports whether an API key is present.
func (p *OpenAIProvider) IsConfigured() bool {
	return p.apiKey != ""
}

// Generate sends a single-message chat completion request.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  MaxTokens,
		"temperature": 0.0,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completions returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}
