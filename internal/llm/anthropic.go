package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider calls the Anthropic messages API.
type AnthropicProvider struct {
	model  string
	apiKey string
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(model, apiKey string) *AnthropicProvider {
	return &AnthropicProvider{model: model, apiKey: apiKey}
}

// IsConfigured reports whether an API key is present.
func (p *AnthropicProvider) IsConfigured() bool {
	return p.apiKey != ""
}

// Generate sends a single-message request and concatenates the text blocks
// of the reply.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	client := anthropic.NewClient(option.WithAPIKey(p.apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}
