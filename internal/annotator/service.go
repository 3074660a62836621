package annotator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"survey-annotator/internal/api"
	"survey-annotator/internal/config"
	"survey-annotator/internal/dataset"
	"survey-annotator/internal/metrics"
	"survey-annotator/internal/schema"
	"survey-annotator/internal/validator"
)

// Service отправляет тексты в модель и собирает аннотации
type Service struct {
	newClient ClientFactory
	chat      Completer
	validator *validator.Validator
	format    *api.ResponseFormat
	delay     time.Duration
	progress  func(done, total int, annotation Annotation)
	sleep     func(ctx context.Context, d time.Duration) error
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New создает сервис аннотации
func New(factory ClientFactory, opts Options, m *metrics.Metrics, logger *zap.Logger) (*Service, error) {
	if factory == nil {
		return nil, errors.New("annotator: client factory is required")
	}

	v, err := validator.New(opts.AllowedAnswers)
	if err != nil {
		return nil, fmt.Errorf("annotator: %w", err)
	}

	format := schema.BuildJSONSchemaFormat(opts.AllowedAnswers)
	if opts.StructuredMode == config.ModeJSONObject {
		format = schema.BuildJSONObjectFormat()
	}

	if m == nil {
		m = metrics.NewMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		newClient: factory,
		chat:      factory(),
		validator: v,
		format:    format,
		delay:     opts.Delay,
		progress:  opts.Progress,
		sleep:     sleepContext,
		metrics:   m,
		logger:    logger,
	}, nil
}

// Chat возвращает свободный ответ модели на текст
func (s *Service) Chat(ctx context.Context, instructions, text string) (string, error) {
	s.metrics.IncrementChatCalls()

	reply, err := s.chat.CompleteWithSystem(ctx, instructions, text, nil)
	s.metrics.IncrementAPICall(err == nil)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	return reply, nil
}

// Annotate выполняет структурированный вызов без сессии: каждый раз создается новый клиент,
// поэтому предыдущие ответы не влияют на текущий.
func (s *Service) Annotate(ctx context.Context, instructions, text string) (schema.StructuredAnswer, error) {
	s.metrics.IncrementStructuredCalls()
	client := s.newClient()

	content, err := client.CompleteWithSystem(ctx, instructions, text, s.format)
	s.metrics.IncrementAPICall(err == nil)
	if err != nil {
		return schema.StructuredAnswer{}, fmt.Errorf("structured call: %w", err)
	}

	answer, err := s.validator.Decode(content)
	if err != nil {
		s.metrics.IncrementValidationFailures()
		s.logger.Warn("structured output rejected", zap.String("content", content), zap.Error(err))
		return schema.StructuredAnswer{}, err
	}

	return answer, nil
}

// AnnotateAll последовательно обрабатывает записи: свободный ответ, затем структурированный.
// Между структурированными вызовами выдерживается фиксированная пауза.
// Первая ошибка прерывает цикл.
func (s *Service) AnnotateAll(ctx context.Context, instructions Instructions, records []dataset.Response) ([]Annotation, error) {
	results := make([]Annotation, 0, len(records))

	for i, record := range records {
		s.logger.Debug("annotating record", zap.Int("text_id", i), zap.String("response_id", record.ID))

		raw, err := s.Chat(ctx, instructions.Chat, record.FreeText)
		if err != nil {
			return results, fmt.Errorf("запись %d (%s): %w", i, record.ID, err)
		}

		answer, err := s.Annotate(ctx, instructions.Structured, record.FreeText)
		if err != nil {
			return results, fmt.Errorf("запись %d (%s): %w", i, record.ID, err)
		}

		annotation := Annotation{
			TextID:    i,
			Text:      record.FreeText,
			Reasoning: answer.Reasoning,
			Answer:    answer.Answer,
			Raw:       raw,
		}
		results = append(results, annotation)

		if s.progress != nil {
			s.progress(i+1, len(records), annotation)
		}

		if i < len(records)-1 && s.delay > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}

// sleepContext ждет d или отмены контекста
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
