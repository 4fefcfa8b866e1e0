package ai

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), "", "gemini-1.5-flash"); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestResponseText_JoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
		}},
	}
	got, err := responseText(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a":1}` {
		t.Errorf("got %q", got)
	}
}

func TestResponseText_Empty(t *testing.T) {
	if _, err := responseText(&genai.GenerateContentResponse{}); err == nil {
		t.Error("expected error for no candidates")
	}
	noText := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}}},
	}
	if _, err := responseText(noText); err == nil {
		t.Error("expected error for no text parts")
	}
}

func TestGeminiSchemaMatchesJSONSchema(t *testing.T) {
	props := jobAnalysisSchema["properties"].(map[string]any)
	if len(props) != len(geminiAnalysisSchema.Properties) {
		t.Fatalf("property count differs: %d vs %d", len(props), len(geminiAnalysisSchema.Properties))
	}
	for name := range props {
		if _, ok := geminiAnalysisSchema.Properties[name]; !ok {
			t.Errorf("gemini schema missing %q", name)
		}
	}
}
