package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// AnthropicClient implementa LLMClient sobre la Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient construye el adaptador. baseURL vacio usa el endpoint publico.
func NewAnthropicClient(apiKey, baseURL, defaultModel string, maxRetries int, logger *zap.Logger) *AnthropicClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if maxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(maxRetries))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  defaultModel,
		logger: logger,
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, req Request) (Completion, error) {
	model := ResolveModel(req.Model)
	if model == "" {
		model = c.model
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(req.MaxTokens),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			c.logger.Warn("anthropic api error", zap.Int("status", apiErr.StatusCode), zap.String("model", model))
			return Completion{}, newError(KindAPIError, fmt.Errorf("status %d: %w", apiErr.StatusCode, err))
		}
		return Completion{}, classify(ctx, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return Completion{}, newError(KindMalformedResponse, errors.New("response has no text content"))
	}

	return Completion{
		Text:         text.String(),
		Model:        model,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}
