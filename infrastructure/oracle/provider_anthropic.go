package oracle

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// AnthropicDefaultModel is the default Anthropic model.
	AnthropicDefaultModel = "claude-3-5-sonnet-20241022"

	// anthropicMaxTokens bounds the response; a score list for even a
	// large room fits comfortably.
	anthropicMaxTokens = 2048
)

func init() {
	RegisterProviderFactory("anthropic", newAnthropicProvider)
}

// anthropicProvider implements CoreScorer for Anthropic's Messages API,
// forcing the submit_scores tool through tool_choice.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(config ClientConfig) (CoreScorer, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	return &anthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

func (p *anthropicProvider) DoRequest(ctx context.Context, req Request) (Response, error) {
	tool := anthropic.ToolParam{
		Name:        scoreToolName,
		Description: anthropic.String(scoreToolDescription),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"scores": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"candidate_id": map[string]any{
								"type":        "string",
								"description": "The exact UUID of the candidate",
							},
							"score": map[string]any{
								"type":        "integer",
								"description": "Score from 0 to 100",
							},
							"reasoning": map[string]any{
								"type":        "string",
								"description": "Brief explanation for the score",
							},
						},
						"required": []string{"candidate_id", "score", "reasoning"},
					},
				},
			},
		},
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Tools: []anthropic.ToolUnionParam{{OfTool: &tool}},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: scoreToolName},
		},
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, p.handleError(err)
	}

	var out Response
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			if content.Name == scoreToolName && out.ToolArguments == "" {
				out.ToolArguments = string(content.Input)
			}
		case anthropic.TextBlock:
			out.Content += content.Text
		}
	}
	if out.ToolArguments == "" && out.Content == "" {
		return Response{}, ErrEmptyResponse
	}
	return out, nil
}

func (p *anthropicProvider) GetModel() string { return p.model }

func (p *anthropicProvider) handleError(err error) error {
	if isContextError(err) {
		return classifyContextError("anthropic", err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Type:         classifyStatus(apiErr.StatusCode),
			Provider:     "anthropic",
			StatusCode:   apiErr.StatusCode,
			WrappedError: err,
		}
	}

	return &ProviderError{
		Type:         ErrorTypeUnknown,
		Provider:     "anthropic",
		Message:      "request failed",
		WrappedError: err,
	}
}
