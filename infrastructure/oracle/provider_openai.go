package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// OpenAIDefaultModel is the default OpenAI model.
	OpenAIDefaultModel = "gpt-4o-mini"
)

func init() {
	RegisterProviderFactory("openai", newOpenAIProvider)
}

// openAIProvider implements CoreScorer for OpenAI's chat completion
// API, forcing the submit_scores function through tool_choice.
type openAIProvider struct {
	client *openai.Client
	model  string
}

func newOpenAIProvider(config ClientConfig) (CoreScorer, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = OpenAIDefaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &openAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// DoRequest sends a chat completion request with the scoring function
// attached and tool_choice pinned to it. The forced call's arguments
// come back in ToolArguments; plain content, if any, rides along for
// the fallback parser.
func (p *openAIProvider) DoRequest(ctx context.Context, req Request) (Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Tools: []openai.Tool{{
			Type:     openai.ToolTypeFunction,
			Function: scoreFunctionDefinition(),
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: scoreToolName},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{}, p.handleError(err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, ErrNoResponseChoice
	}

	message := resp.Choices[0].Message
	out := Response{Content: message.Content}
	for _, call := range message.ToolCalls {
		if call.Function.Name == scoreToolName {
			out.ToolArguments = call.Function.Arguments
			break
		}
	}
	return out, nil
}

func (p *openAIProvider) GetModel() string { return p.model }

func scoreFunctionDefinition() *openai.FunctionDefinition {
	return &openai.FunctionDefinition{
		Name:        scoreToolName,
		Description: scoreToolDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
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
			"required": []string{"scores"},
		},
	}
}

func (p *openAIProvider) handleError(err error) error {
	if isContextError(err) {
		return classifyContextError("openai", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := fmt.Sprintf("%v", apiErr.Message)
		return &ProviderError{
			Type:         classifyStatus(apiErr.HTTPStatusCode),
			Provider:     "openai",
			StatusCode:   apiErr.HTTPStatusCode,
			Message:      message,
			WrappedError: err,
		}
	}

	return &ProviderError{
		Type:         ErrorTypeUnknown,
		Provider:     "openai",
		Message:      "request failed",
		WrappedError: err,
	}
}
