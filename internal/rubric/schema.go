package rubric

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func resultSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(schemaMap())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("analysis_result.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("analysis_result.json")
	})
	return compiledSchema, schemaErr
}

// schemaMap describes the JSON object the provider must return. Scores are
// bounded per variable; unknown extra fields are tolerated.
func schemaMap() map[string]any {
	nullableString := map[string]any{"type": []string{"string", "null"}}

	props := map[string]any{
		"found_genai_disclosure": map[string]any{"type": "boolean"},
		"message_en":             nullableString,
		"message_tr":             nullableString,
		"total_score":            map[string]any{"type": []string{"integer", "null"}},
		"category":               nullableString,
		"overall_confidence":     nullableString,
		"warnings": map[string]any{
			"type":  []string{"array", "null"},
			"items": map[string]any{"type": "string"},
		},
	}
	for _, spec := range Variables {
		props[spec.Key] = map[string]any{
			"type": []string{"object", "null"},
			"properties": map[string]any{
				"score": map[string]any{
					"type":    []string{"integer", "null"},
					"minimum": spec.Min,
					"maximum": spec.Max,
				},
				"confidence":     nullableString,
				"explanation_en": nullableString,
				"explanation_tr": nullableString,
				"quote":          nullableString,
				"location":       nullableString,
			},
			"required": []string{"score"},
		}
	}

	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
		"required":   []string{"found_genai_disclosure"},
	}
}
