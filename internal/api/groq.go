package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"survey-annotator/internal/config"
)

// ErrEmptyResponse возвращается, когда API не вернул ни одного варианта ответа
var ErrEmptyResponse = errors.New("no choices returned from chat completion API")

// Client - клиент OpenAI-совместимого chat completions API (Groq).
// Клиент не хранит историю сообщений: каждый вызов отправляет только переданные сообщения.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

// NewClient создает клиент по конфигурации Groq
func NewClient(cfg config.GroqConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second // Увеличенный таймаут для медленных моделей
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// CompleteWithSystem отправляет системную инструкцию и текст пользователя.
// format == nil означает обычный текстовый ответ.
func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string, format *ResponseFormat) (string, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}
	return c.Complete(ctx, messages, format)
}

// Complete выполняет один запрос к /chat/completions и возвращает текст первого варианта
func (c *Client) Complete(ctx context.Context, messages []Message, format *ResponseFormat) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("API key not configured")
	}

	startTime := time.Now()
	reqBody := ChatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: format,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("chat completion request",
		zap.String("model", c.model),
		zap.Int("messages", len(messages)),
		zap.Bool("structured", format != nil))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("chat completion API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	c.logger.Debug("chat completion done",
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("total_tokens", chatResp.Usage.TotalTokens),
		zap.Int("response_len", len(content)))

	return content, nil
}

// CleanJSONResponse снимает markdown блок, обрамляющий ответ, и оставляет первый JSON объект.
// Корректный JSON возвращается без изменений.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if json.Valid([]byte(response)) {
		return response
	}

	// Снимаем только внешний ```json ... ``` блок, содержимое строк не трогаем
	if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(strings.TrimSpace(response), "```")
		response = strings.TrimSpace(response)
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return response
	}
	return response[start : end+1]
}
