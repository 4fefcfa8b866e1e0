package ai

import "context"

// LLMProvider sends a prompt to an LLM and returns the raw JSON text it
// produced for jobAnalysisSchema. Used only by LLMJobAnalyzer.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
