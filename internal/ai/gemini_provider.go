package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider calls Google Gemini in JSON mode.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider for the named Gemini model. Extra
// client options are appended after the API key, so tests can redirect the
// endpoint.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: modelName}, nil
}

// Complete asks the model for a JSON answer matching jobAnalysisSchema.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m := p.client.GenerativeModel(p.model)
	m.SetTemperature(0)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = geminiAnalysisSchema

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp)
}

// Close releases the underlying gRPC connection.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// geminiAnalysisSchema is jobAnalysisSchema in Gemini's schema dialect.
var geminiAnalysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"required_skills":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"preferred_skills": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"seniority": {
			Type:   genai.TypeString,
			Format: "enum",
			Enum:   []string{"intern", "junior", "mid", "senior", "lead", "unknown"},
		},
		"summary": {Type: genai.TypeString},
	},
	Required: []string{"required_skills", "preferred_skills", "seniority", "summary"},
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return "", fmt.Errorf("gemini returned no content")
	}
	var parts []string
	for _, part := range c.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini returned no text parts")
	}
	return strings.Join(parts, ""), nil
}
