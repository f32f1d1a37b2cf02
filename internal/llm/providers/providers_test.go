package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decisionSchema = &Schema{
	Name: "tool_decision",
	Properties: map[string]any{
		"tool":  map[string]any{"type": "string"},
		"query": map[string]any{"type": "string"},
	},
	Required: []string{"tool", "query"},
}

func temp(v float64) *float64 { return &v }

func TestLocalProvider(t *testing.T) {
	p := NewLocalProvider()
	out, err := p.Complete(context.Background(), Completion{Prompt: "linea uno\nPregunta: hola\n"})
	require.NoError(t, err)
	assert.Equal(t, "[local-stub] Pregunta: hola", out)

	out, err = p.Complete(context.Background(), Completion{Prompt: "x", Schema: decisionSchema})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"[local-stub]","tool":"[local-stub]"}`, out)

	out, err = p.Complete(context.Background(), Completion{Prompt: "x", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, "{}", out)

	_, err = p.Complete(context.Background(), Completion{})
	assert.Error(t, err)
}

func TestSchemaDefinition(t *testing.T) {
	def := decisionSchema.Definition()
	assert.Equal(t, "object", def["type"])
	assert.Equal(t, []string{"tool", "query"}, def["required"])
	assert.Equal(t, false, def["additionalProperties"])
	assert.Contains(t, decisionSchema.Instructions(), `"required":["tool","query"]`)
}

func TestOpenAIProviderSendsStructuredRequest(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"openai/gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"tool\":\"search_web\",\"query\":\"COAC\"}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIOptions{APIKey: "sk-test", BaseURL: srv.URL, Model: "openai/gpt-4o"})
	out, err := p.Complete(context.Background(), Completion{System: "sys", Prompt: "hola", Schema: decisionSchema, Temperature: temp(0.5)})
	require.NoError(t, err)
	assert.Equal(t, `{"tool":"search_web","query":"COAC"}`, out)

	assert.Equal(t, "openai/gpt-4o", body["model"])
	assert.Equal(t, 0.5, body["temperature"])
	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	format := body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAIProviderJSONMode(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c2","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIOptions{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := p.Complete(context.Background(), Completion{Prompt: "hola", JSON: true})
	require.NoError(t, err)
	format := body["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
	assert.Len(t, body["messages"].([]any), 1)
}

func TestOpenAIProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIOptions{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := p.Complete(context.Background(), Completion{Prompt: "hola"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestOpenAIProviderEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c3","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIOptions{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := p.Complete(context.Background(), Completion{Prompt: "hola"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropicProvider(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"Hola"},{"type":"text","text":" mundo"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(AnthropicOptions{APIKey: "k", BaseURL: srv.URL, Model: "claude"})
	out, err := p.Complete(context.Background(), Completion{System: "sys", Prompt: "hola", Schema: decisionSchema})
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", out)
	assert.Equal(t, float64(defaultAnthropicMaxTokens), body["max_tokens"])
	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Contains(t, system[0].(map[string]any)["text"], "JSON Schema")
}

func TestOllamaProvider(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","response":"{\"facebook\":\"hola\"}","done":true}` + "\n"))
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(srv.URL, "llama3", nil)
	require.NoError(t, err)
	out, err := p.Complete(context.Background(), Completion{Prompt: "hola", JSON: true, Temperature: temp(0.7)})
	require.NoError(t, err)
	assert.Equal(t, `{"facebook":"hola"}`, out)
	assert.Equal(t, "json", body["format"])
	assert.Equal(t, false, body["stream"])
	assert.Equal(t, 0.7, body["options"].(map[string]any)["temperature"])
}
