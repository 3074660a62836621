package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-annotator/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.GroqConfig{
		APIKey:    "test-key",
		BaseURL:   url,
		Model:     "test-model",
		MaxTokens: 256,
		Timeout:   5 * time.Second,
	}, nil)
}

func TestClient_CompleteWithSystem_Success(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","choices":[{"message":{"role":"assistant","content":"  Bonjour  "}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/")
	resp, err := client.CompleteWithSystem(context.Background(), "system", "texte", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bonjour", resp)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "texte", got.Messages[1].Content)
	assert.Nil(t, got.ResponseFormat)
}

func TestClient_Complete_SendsResponseFormat(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()

	format := &ResponseFormat{
		Type: "json_schema",
		JSONSchema: &JSONSchema{
			Name:   "Annotation",
			Strict: true,
			Schema: map[string]interface{}{"type": "object"},
		},
	}

	_, err := newTestClient(server.URL).CompleteWithSystem(context.Background(), "s", "u", format)
	require.NoError(t, err)

	rf, ok := raw["response_format"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "json_schema", rf["type"])
	schema := rf["json_schema"].(map[string]interface{})
	assert.Equal(t, "Annotation", schema["name"])
	assert.Equal(t, true, schema["strict"])
}

func TestClient_Complete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http status", status: http.StatusUnauthorized, body: `{"error":{"message":"invalid key"}}`},
		{name: "api error field", status: http.StatusOK, body: `{"error":{"message":"model overloaded"}}`},
		{name: "malformed body", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).CompleteWithSystem(context.Background(), "s", "u", nil)
			assert.Error(t, err)
		})
	}
}

func TestClient_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CompleteWithSystem(context.Background(), "s", "u", nil)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestClient_Complete_MissingKey(t *testing.T) {
	client := NewClient(config.GroqConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := client.CompleteWithSystem(context.Background(), "s", "u", nil)
	assert.Error(t, err)
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "```json\n{\"answer\":\"1\"}\n```", want: `{"answer":"1"}`},
		{in: "Voici: {\"answer\":\"2\"} merci", want: `{"answer":"2"}`},
		{in: "  {\"a\":{\"b\":1}}  ", want: `{"a":{"b":1}}`},
		{in: "no json here", want: "no json here"},
		{in: "{\"reasoning\":\"cite ```json et ```\"}", want: "{\"reasoning\":\"cite ```json et ```\"}"},
		{in: "```\n{\"reasoning\":\"`x`\"}\n```", want: "{\"reasoning\":\"`x`\"}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanJSONResponse(tt.in))
	}
}
