package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"legal_counsel_finder/pkg/core/config"
)

func chatServer(t *testing.T, reply string, check func(body map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if check != nil {
			check(body)
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"model": "test",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}, "finish_reason": "stop"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func userContent(body map[string]interface{}) string {
	msgs, _ := body["messages"].([]interface{})
	for _, m := range msgs {
		msg, _ := m.(map[string]interface{})
		if msg["role"] == "user" {
			s, _ := msg["content"].(string)
			return s
		}
	}
	return ""
}

func TestOpenAIProvider(t *testing.T) {
	srv := chatServer(t, `{"Cooley LLP": ["Jane Doe"]}`, func(body map[string]interface{}) {
		if body["model"] != "override-model" {
			t.Errorf("model = %v", body["model"])
		}
		if userContent(body) != "find counsel" {
			t.Errorf("user message = %q", userContent(body))
		}
		temp, ok := body["temperature"].(float64)
		if !ok || temp > 1e-6 {
			t.Errorf("temperature = %v, want near-zero and present", body["temperature"])
		}
	})

	p, err := NewOpenAIProvider("test-key", srv.URL+"/v1", "gpt-test")
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.GenerateResponse(context.Background(), "find counsel", "", map[string]interface{}{"model": "override-model"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"Cooley LLP": ["Jane Doe"]}` {
		t.Errorf("reply = %q", got)
	}
}

func TestDeepSeekProvider(t *testing.T) {
	srv := chatServer(t, "ok", func(body map[string]interface{}) {
		if body["model"] != defaultDeepSeekModel {
			t.Errorf("model = %v", body["model"])
		}
		if body["temperature"] != 0.0 {
			t.Errorf("temperature = %v", body["temperature"])
		}
	})

	p, err := NewDeepSeekProvider("test-key", srv.URL, "", 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.GenerateResponse(context.Background(), "hello", "be brief", nil)
	if err != nil || got != "ok" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestDeepSeekProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p, _ := NewDeepSeekProvider("test-key", srv.URL, "", time.Second)
	_, err := p.GenerateResponse(context.Background(), "hello", "", nil)
	if err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Errorf("err = %v", err)
	}
}

func TestProvidersRequireKey(t *testing.T) {
	_, err1 := NewOpenAIProvider("", "", "")
	_, err2 := NewDeepSeekProvider("", "", "", time.Second)
	_, err3 := NewGeminiProvider("", "")
	for i, err := range []error{err1, err2, err3} {
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("provider %d: err = %v", i, err)
		}
	}
}

func TestManagerFromConfig(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LLMConfig
		active string
	}{
		{"disabled", config.LLMConfig{Enabled: false, Provider: "openai", APIKey: "k"}, ""},
		{"no key", config.LLMConfig{Enabled: true, Provider: "openai"}, ""},
		{"unknown provider", config.LLMConfig{Enabled: true, Provider: "kimi", APIKey: "k"}, ""},
		{"openai", config.LLMConfig{Enabled: true, Provider: "openai", APIKey: "k"}, "openai"},
		{"deepseek", config.LLMConfig{Enabled: true, Provider: "deepseek", APIKey: "k"}, "deepseek"},
		{"gemini", config.LLMConfig{Enabled: true, Provider: "gemini", APIKey: "k"}, "gemini"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManagerFromConfig(tt.cfg)
			if m.GetActiveProvider() != tt.active {
				t.Errorf("active = %q, want %q", m.GetActiveProvider(), tt.active)
			}
			if (m.GetProvider() == nil) != (tt.active == "") {
				t.Errorf("GetProvider() = %v", m.GetProvider())
			}
		})
	}
}

func TestManagerFirstRegisteredIsActive(t *testing.T) {
	var nilManager *Manager
	if nilManager.GetProvider() != nil || nilManager.GetActiveProvider() != "" {
		t.Error("nil manager should have no provider")
	}

	m := NewManager()
	m.Register(&GeminiProvider{APIKey: "k"})
	m.Register(&DeepSeekProvider{APIKey: "k"})

	if m.GetActiveProvider() != "gemini" {
		t.Errorf("first registered provider should be active, got %q", m.GetActiveProvider())
	}
	if m.GetProvider().Name() != "gemini" {
		t.Errorf("active = %s", m.GetProvider().Name())
	}
}
