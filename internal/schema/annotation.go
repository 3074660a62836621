// Package schema описывает структуру ответа модели при аннотации текста.
package schema

import (
	"encoding/json"

	"survey-annotator/internal/api"
)

// SchemaName - имя схемы в запросе response_format
const SchemaName = "Annotation"

// StructuredAnswer - пара {reasoning, answer}, которую возвращает модель
type StructuredAnswer struct {
	Reasoning string `json:"reasoning"`
	Answer    string `json:"answer"`
}

// AnnotationSchema возвращает JSON схему ответа.
// Оба поля обязательны, answer ограничен списком допустимых кодов.
func AnnotationSchema(allowedAnswers []string) map[string]interface{} {
	enum := make([]interface{}, len(allowedAnswers))
	for i, answer := range allowedAnswers {
		enum[i] = answer
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"reasoning": map[string]interface{}{
				"type":        "string",
				"description": "Brief justification of the chosen code",
			},
			"answer": map[string]interface{}{
				"type":        "string",
				"enum":        enum,
				"description": "Category code",
			},
		},
		"required":             []interface{}{"reasoning", "answer"},
		"additionalProperties": false,
	}
}

// SchemaJSON сериализует схему для вставки в промпт
func SchemaJSON(allowedAnswers []string) string {
	data, err := json.MarshalIndent(AnnotationSchema(allowedAnswers), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// BuildJSONSchemaFormat создает response_format с полной схемой (strict режим)
func BuildJSONSchemaFormat(allowedAnswers []string) *api.ResponseFormat {
	return &api.ResponseFormat{
		Type: "json_schema",
		JSONSchema: &api.JSONSchema{
			Name:   SchemaName,
			Strict: true,
			Schema: AnnotationSchema(allowedAnswers),
		},
	}
}

// BuildJSONObjectFormat создает response_format для моделей без поддержки схем.
// Соблюдение схемы в этом режиме обеспечивается промптом и локальной валидацией.
func BuildJSONObjectFormat() *api.ResponseFormat {
	return &api.ResponseFormat{
		Type: "json_object",
	}
}
