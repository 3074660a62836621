package config

import (
	"fmt"
	"time"
)

// GroqConfig описывает подключение к OpenAI-совместимому эндпоинту Groq
type GroqConfig struct {
	APIKey      string        `env:"GROQ_API_KEY"`
	BaseURL     string        `env:"GROQ_BASE_URL"     env-default:"https://api.groq.com/openai/v1"`
	Model       string        `env:"GROQ_MODEL"        env-default:"llama-3.3-70b-versatile"`
	MaxTokens   int           `env:"GROQ_MAX_TOKENS"   env-default:"1024"`
	Temperature float64       `env:"GROQ_TEMPERATURE"  env-default:"0"`
	Timeout     time.Duration `env:"GROQ_TIMEOUT"      env-default:"120s"`
}

// ValidateConfig проверяет корректность конфигурации
func (c *GroqConfig) ValidateConfig() error {
	if c.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}

	if c.Model == "" {
		return fmt.Errorf("GROQ_MODEL is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("GROQ_MAX_TOKENS must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("GROQ_TEMPERATURE must be between 0 and 2")
	}

	return nil
}

// GetModelInfo возвращает информацию о используемой модели
func (c *GroqConfig) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"model":       c.Model,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
		"provider":    "Groq",
	}
}
