package annotator

import (
	"context"
	"time"

	"survey-annotator/internal/api"
)

// Annotation - результат анализа одного текста
type Annotation struct {
	TextID    int    `json:"text_id"`
	Text      string `json:"text"`
	Reasoning string `json:"reasoning"`
	Answer    string `json:"answer"`
	Raw       string `json:"raw,omitempty"`
}

// Completer - минимальный интерфейс клиента chat completions
type Completer interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string, format *api.ResponseFormat) (string, error)
}

// ClientFactory создает новый клиент на каждый структурированный вызов
type ClientFactory func() Completer

// Instructions - системные инструкции для свободного и структурированного вызовов
type Instructions struct {
	Chat       string
	Structured string
}

// Options настраивает сервис аннотации
type Options struct {
	AllowedAnswers []string
	StructuredMode string
	Delay          time.Duration
	// Progress вызывается после каждого аннотированного текста
	Progress func(done, total int, annotation Annotation)
}
