package ai

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const maxSkills = 15

// jobAnalysisSchema is sent to providers that enforce structured output and
// checked locally against every response.
var jobAnalysisSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"required_skills": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"maxItems": maxSkills,
		},
		"preferred_skills": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"maxItems": maxSkills,
		},
		"seniority": map[string]any{
			"type": "string",
			"enum": []string{"intern", "junior", "mid", "senior", "lead", "unknown"},
		},
		"summary": map[string]any{"type": "string"},
	},
	"required": []string{"required_skills", "preferred_skills", "seniority", "summary"},
}

var compiledSchema = mustCompile(jobAnalysisSchema)

func mustCompile(schema map[string]any) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("compiling job analysis schema: %v", err))
	}
	return s
}

// SchemaError lists the fields of an LLM response that broke the schema.
type SchemaError struct {
	Fields []string
}

func (e *SchemaError) Error() string {
	return "response does not match schema: " + strings.Join(e.Fields, "; ")
}

// validateAnalysis checks raw against jobAnalysisSchema.
func validateAnalysis(raw string) error {
	result, err := compiledSchema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("loading response JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	se := &SchemaError{}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		se.Fields = append(se.Fields, field+": "+desc.Description())
	}
	return se
}
