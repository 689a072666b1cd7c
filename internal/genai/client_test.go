package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"livinglibrary/api/internal/config"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		handler(w, body)
	}))
}

func modelReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
}

func TestProcessFile(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		config, ok := body["generationConfig"].(map[string]any)
		if !ok || config["responseMimeType"] != "application/json" {
			t.Error("expected JSON response mime type in generation config")
		}
		reply, _ := json.Marshal(map[string]any{
			"content":    "Line one\n\nLine two",
			"summary":    "A short tale.",
			"tags":       []string{"memory", "family"},
			"categories": []string{"Identity"},
		})
		json.NewEncoder(w).Encode(modelReply(string(reply)))
	})
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	processed, err := client.ProcessFile(context.Background(), "ZGF0YQ==", "application/pdf")
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if processed.Content != "Line one\n\nLine two" {
		t.Errorf("content not preserved: %q", processed.Content)
	}
	if len(processed.Tags) != 2 || processed.Categories[0] != "Identity" {
		t.Errorf("unexpected metadata: %+v", processed)
	}
}

func TestSummarize(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		json.NewEncoder(w).Encode(modelReply("A concise summary."))
	})
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	summary, err := client.Summarize(context.Background(), "a very long story")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != "A concise summary." {
		t.Errorf("Summarize() = %q", summary)
	}
}

func TestChatSendsPersonaAndHistory(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		system, ok := body["systemInstruction"].(map[string]any)
		if !ok {
			t.Fatal("missing system instruction")
		}
		raw, _ := json.Marshal(system)
		if !strings.Contains(string(raw), "Leo") {
			t.Error("system instruction should carry the guide persona")
		}
		contents, ok := body["contents"].([]any)
		if !ok || len(contents) != 3 {
			t.Fatalf("expected 3 content turns, got %v", body["contents"])
		}
		json.NewEncoder(w).Encode(modelReply("Happy to help."))
	})
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	history := []Message{
		{Role: "user", Text: "Hi"},
		{Role: "model", Text: "Hello!"},
	}
	reply, err := client.Chat(context.Background(), history, "Tell me about migration stories")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Happy to help." {
		t.Errorf("Chat() = %q", reply)
	}
}

func TestDefaultConfigRequestPath(t *testing.T) {
	paths := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		json.NewEncoder(w).Encode(modelReply("ok"))
	}))
	defer server.Close()

	t.Setenv("GEMINI_BASE_URL", "")
	t.Setenv("GEMINI_MODEL", "")
	cfg := config.Load()

	// Wired exactly as main does it: the configured base URL goes straight
	// into WithBaseURL, with the production host swapped for the test
	// server. A path-building mismatch between config and client shows up
	// here as a doubled or missing /v1beta segment.
	base := strings.Replace(cfg.GeminiBaseURL, "https://generativelanguage.googleapis.com", server.URL, 1)
	client := NewClient("key", WithBaseURL(base), WithModel(cfg.GeminiModel))

	if _, err := client.Summarize(context.Background(), "text"); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got := <-paths; got != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("request path = %q", got)
	}
}

func TestGenerateSurfacesModelErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exceeded"},
		})
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	if _, err := client.Summarize(context.Background(), "text"); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected quota error, got %v", err)
	}
}
