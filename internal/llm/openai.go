package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient implementa LLMClient contra cualquier API compatible con chat completions.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient construye el adaptador. baseURL vacio apunta a https://api.openai.com/v1.
func NewOpenAIClient(apiKey, baseURL, defaultModel string, logger *zap.Logger) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  defaultModel,
		logger: logger,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (Completion, error) {
	model := ResolveModel(req.Model)
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			c.logger.Warn("llm api error", zap.Int("status", apiErr.HTTPStatusCode), zap.String("model", model))
			return Completion{}, newError(KindAPIError, fmt.Errorf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		return Completion{}, classify(ctx, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Completion{}, newError(KindMalformedResponse, errors.New("llm empty response"))
	}

	return Completion{
		Text:         resp.Choices[0].Message.Content,
		Model:        model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
