package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig собирает настройки запуска из переменных окружения
type AppConfig struct {
	Groq     GroqConfig
	Annotate AnnotateConfig
}

// AnnotateConfig управляет циклом аннотации
type AnnotateConfig struct {
	Delay          time.Duration `env:"ANNOTATE_DELAY"           env-default:"1s"`
	StructuredMode string        `env:"ANNOTATE_STRUCTURED_MODE" env-default:"json_schema"`
	ResultsDir     string        `env:"ANNOTATE_RESULTS_DIR"     env-default:"results"`
}

// Поддерживаемые режимы структурированного ответа
const (
	ModeJSONSchema = "json_schema"
	ModeJSONObject = "json_object"
)

// LoadAppConfig читает конфигурацию из окружения (значения по умолчанию берутся из тегов)
func LoadAppConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}
	return &cfg, nil
}

// Validate проверяет конфигурацию целиком
func (c *AppConfig) Validate() error {
	if err := c.Groq.ValidateConfig(); err != nil {
		return err
	}

	if c.Annotate.Delay < 0 {
		return fmt.Errorf("ANNOTATE_DELAY не может быть отрицательным")
	}

	switch c.Annotate.StructuredMode {
	case ModeJSONSchema, ModeJSONObject:
	default:
		return fmt.Errorf("неизвестный ANNOTATE_STRUCTURED_MODE: %q", c.Annotate.StructuredMode)
	}

	return nil
}
