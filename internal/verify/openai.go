package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avetrov/claimsift/internal/model"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config model.VerifyConfig
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config model.VerifyConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// VerifyBatch verifies one batch of claims using the Chat Completions API
func (p *OpenAIProvider) VerifyBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	if len(req.Texts) == 0 {
		return &BatchResponse{}, nil
	}

	chatModel := req.Model
	if chatModel == "" {
		chatModel = p.config.Model
	}
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	chatReq := openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a due-diligence claim verifier. You respond with strict JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req.Texts),
			},
		},
		Temperature: 0.1, // Keep verdicts stable across retries
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	verdicts, err := parseVerdicts(resp.Choices[0].Message.Content, len(req.Texts))
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", req.BatchID, err)
	}

	return &BatchResponse{
		Verdicts:   verdicts,
		Model:      chatModel,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// parseVerdicts parses the model output into verdicts and enforces the
// same-length, in-range contract
func parseVerdicts(content string, want int) ([]Verdict, error) {
	content = strings.TrimSpace(content)

	// Models sometimes wrap JSON in a markdown fence despite instructions
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var verdicts []Verdict
	if err := json.Unmarshal([]byte(content), &verdicts); err != nil {
		return nil, fmt.Errorf("parse verdicts: %w", err)
	}

	if len(verdicts) != want {
		return nil, fmt.Errorf("verdict count mismatch: got %d, want %d", len(verdicts), want)
	}

	seen := make([]bool, want)
	for _, v := range verdicts {
		if v.Index < 0 || v.Index >= want {
			return nil, fmt.Errorf("verdict index %d out of range [0,%d)", v.Index, want)
		}
		if seen[v.Index] {
			return nil, fmt.Errorf("duplicate verdict for index %d", v.Index)
		}
		seen[v.Index] = true
	}

	return verdicts, nil
}
