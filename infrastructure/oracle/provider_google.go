package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const (
	// GoogleDefaultModel is the default Gemini model.
	GoogleDefaultModel = "gemini-2.0-flash-exp"
)

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider implements CoreScorer for Google's Gemini API using a
// forced function declaration.
type googleProvider struct {
	client *genai.Client
	model  string
}

func newGoogleProvider(config ClientConfig) (CoreScorer, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}

	return &googleProvider{client: client, model: model}, nil
}

func (p *googleProvider) DoRequest(ctx context.Context, req Request) (Response, error) {
	// Gemini has no separate system role; prepend the persona.
	prompt := req.Prompt
	if req.System != "" {
		prompt = fmt.Sprintf("System: %s\n\nUser: %s", req.System, req.Prompt)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{scoreFunctionDeclaration()},
		}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{scoreToolName},
			},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return Response{}, p.handleError(err)
	}

	var out Response
	for _, call := range resp.FunctionCalls() {
		if call.Name != scoreToolName {
			continue
		}
		args, err := json.Marshal(call.Args)
		if err != nil {
			continue
		}
		out.ToolArguments = string(args)
		break
	}
	out.Content = resp.Text()

	if out.ToolArguments == "" && out.Content == "" {
		return Response{}, ErrEmptyResponse
	}
	return out, nil
}

func (p *googleProvider) GetModel() string { return p.model }

func scoreFunctionDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        scoreToolName,
		Description: scoreToolDescription,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"scores": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"candidate_id": {
								Type:        genai.TypeString,
								Description: "The exact UUID of the candidate",
							},
							"score": {
								Type:        genai.TypeInteger,
								Description: "Score from 0 to 100",
							},
							"reasoning": {
								Type:        genai.TypeString,
								Description: "Brief explanation for the score",
							},
						},
						Required: []string{"candidate_id", "score", "reasoning"},
					},
				},
			},
			Required: []string{"scores"},
		},
	}
}

func (p *googleProvider) handleError(err error) error {
	if isContextError(err) {
		return classifyContextError("google", err)
	}

	if apiErr, ok := err.(*googleapi.Error); ok {
		message := apiErr.Message
		if message == "" && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}
		return &ProviderError{
			Type:         classifyStatus(apiErr.Code),
			Provider:     "google",
			StatusCode:   apiErr.Code,
			Message:      message,
			WrappedError: err,
		}
	}

	return &ProviderError{
		Type:         ErrorTypeUnknown,
		Provider:     "google",
		Message:      "request failed",
		WrappedError: err,
	}
}
