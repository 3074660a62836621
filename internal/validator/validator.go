// Package validator проверяет структурированные ответы модели по JSON схеме.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"survey-annotator/internal/api"
	"survey-annotator/internal/schema"
)

// ErrInvalidStructuredOutput - ответ модели не соответствует схеме
var ErrInvalidStructuredOutput = errors.New("structured output does not match schema")

const schemaURL = "annotation.json"

// Validator хранит скомпилированную схему ответа
type Validator struct {
	schema *jsonschema.Schema
}

// New компилирует схему аннотации для заданного набора допустимых ответов
func New(allowedAnswers []string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schema.SchemaJSON(allowedAnswers))); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: compiled}, nil
}

// Decode очищает ответ модели, проверяет его по схеме и возвращает пару {reasoning, answer}
func (v *Validator) Decode(content string) (schema.StructuredAnswer, error) {
	var result schema.StructuredAnswer

	cleaned := api.CleanJSONResponse(content)

	var doc interface{}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidStructuredOutput, err)
	}

	if err := v.schema.Validate(doc); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidStructuredOutput, err)
	}

	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidStructuredOutput, err)
	}

	return result, nil
}
