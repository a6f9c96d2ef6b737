package scoring

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

// responseSchema is the JSON Schema an LLM scoring response must satisfy.
const responseSchema = `{
  "type": "object",
  "required": ["dimensions"],
  "properties": {
    "dimensions": {
      "type": "array",
      "minItems": 5,
      "maxItems": 5,
      "items": {
        "type": "object",
        "required": ["dimension", "score", "explanation", "evidence", "suggestions"],
        "properties": {
          "dimension": {"type": "string", "enum": ["correctness", "depth", "communication", "problem-solving", "relevance"]},
          "score": {"type": "number", "minimum": 1, "maximum": 5},
          "explanation": {"type": "string", "minLength": 1},
          "evidence": {"type": "array", "items": {"type": "string"}},
          "suggestions": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "biasFlags": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "description"],
        "properties": {
          "type": {"type": "string", "enum": ["halo-effect", "anchor-bias", "severity-bias", "language-bias"]},
          "description": {"type": "string"},
          "mitigationApplied": {"type": "string"}
        }
      }
    },
    "calibrationNote": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 100}
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	})
	return schema, schemaErr
}

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError lists every violation found in an LLM response.
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "scoring response failed validation: " + strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error { return domain.ErrSchemaInvalid }

// ValidateResponse checks a cleaned JSON document against the scoring schema.
func ValidateResponse(doc string) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("op=scoring.ValidateResponse: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}
	if result.Valid() {
		return nil
	}
	se := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		se.Errors = append(se.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return se
}
