package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func TestOllamaLabeler_Label(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Images) != 1 || req.Images[0] != "aW1n" {
			t.Errorf("Expected one base64 image, got %v", req.Images)
		}
		if req.Model != "llava" {
			t.Errorf("Expected default model llava, got %s", req.Model)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: "llava", Response: "banana peel|0.81", Done: true})
	}))
	defer server.Close()

	p, err := NewOllamaLabeler(Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create labeler: %v", err)
	}

	got, err := p.Label(context.Background(), Image{Data: []byte("img")})
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if got.Label != "banana peel" || got.Score != 0.81 || got.Model != "llava" {
		t.Errorf("Unexpected label: %+v", got)
	}
}

func TestOllamaLabeler_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p, _ := NewOllamaLabeler(Config{BaseURL: server.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	server.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable after shutdown")
	}
}

func TestAnthropicLabeler_Label(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected api key header, got %q", r.Header.Get("x-api-key"))
		}

		var req anthropicRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Fatalf("Expected one message with image and text, got %+v", req.Messages)
		}
		src := req.Messages[0].Content[0].Source
		if src == nil || src.MediaType != "image/png" || src.Data != "aW1n" {
			t.Errorf("Unexpected image source: %+v", src)
		}

		_, _ = w.Write([]byte(`{"id":"msg_1","model":"claude-test","content":[{"type":"text","text":"aa battery|0.9"}]}`))
	}))
	defer server.Close()

	p, err := NewAnthropicLabeler(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create labeler: %v", err)
	}

	got, err := p.Label(context.Background(), Image{Data: []byte("img"), MIMEType: "image/png"})
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if got.Label != "aa battery" || got.Model != "claude-test" {
		t.Errorf("Unexpected label: %+v", got)
	}
}

func TestAnthropicLabeler_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	p, _ := NewAnthropicLabeler(Config{APIKey: "bad", BaseURL: server.URL})
	_, err := p.Label(context.Background(), Image{Data: []byte("img")})
	if err == nil || !strings.Contains(err.Error(), "invalid x-api-key") {
		t.Errorf("Expected authentication error, got %v", err)
	}
}

func TestOpenAILabeler_Label(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		user := req.Messages[len(req.Messages)-1]
		if len(user.MultiContent) != 2 || user.MultiContent[1].ImageURL == nil ||
			!strings.HasPrefix(user.MultiContent[1].ImageURL.URL, "data:image/jpeg;base64,") {
			t.Errorf("Expected text and data-URL image parts, got %+v", user.MultiContent)
		}

		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "glass jar|0.66"}},
			},
		})
	}))
	defer server.Close()

	p, err := NewOpenAILabeler(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("Failed to create labeler: %v", err)
	}

	got, err := p.Label(context.Background(), Image{Data: []byte("img")})
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if got.Label != "glass jar" || got.Score != 0.66 {
		t.Errorf("Unexpected label: %+v", got)
	}
}

func TestNewLabeler(t *testing.T) {
	p, err := NewLabeler(context.Background(), Config{})
	if err != nil || p != nil {
		t.Errorf("Expected disabled labeler, got %v, %v", p, err)
	}

	if _, err := NewLabeler(context.Background(), Config{Provider: "clippy"}); err == nil {
		t.Error("Expected error for unknown provider")
	}

	if _, err := NewLabeler(context.Background(), Config{Provider: "openai"}); err == nil {
		t.Error("Expected error for missing OpenAI key")
	}

	p, err = NewLabeler(context.Background(), Config{Provider: "Ollama"})
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Expected ollama, got %s", p.Name())
	}
}
