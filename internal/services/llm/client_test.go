package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"shelver/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.LLM{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	}
	return NewClient(cfg, opts...)
}

func chatResponse(content string) []byte {
	body := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	encoded, _ := json.Marshal(body)
	return encoded
}

func TestClassifyParsesAndNormalizesVerdict(t *testing.T) {
	var gotAuth, gotContentType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")

		var payload chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload.Model != "test-model" {
			t.Errorf("model = %q", payload.Model)
		}
		if payload.ResponseFormat["type"] != jsonResponseType {
			t.Errorf("response format = %v", payload.ResponseFormat)
		}

		_, _ = w.Write(chatResponse(`{"destination_folder":"/Projects/","tags":["#go"," notes ",""],"suggested_name":" Weekly Plan "}`))
	})

	verdict, err := client.Classify(context.Background(), ClassifyRequest{
		OriginalName: "note.md",
		Content:      "plan the week",
		Folders:      []string{"Projects", "Archive"},
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type = %q", gotContentType)
	}
	if verdict.DestinationFolder != "Projects" {
		t.Fatalf("folder = %q", verdict.DestinationFolder)
	}
	if len(verdict.Tags) != 2 || verdict.Tags[0] != "go" || verdict.Tags[1] != "notes" {
		t.Fatalf("tags = %v", verdict.Tags)
	}
	if verdict.SuggestedName != "Weekly Plan" {
		t.Fatalf("suggested name = %q", verdict.SuggestedName)
	}
}

func TestClassifyRequiresContentAndKey(t *testing.T) {
	client := NewClient(config.LLM{APIKey: "key", BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Classify(context.Background(), ClassifyRequest{Content: "  "}); err == nil {
		t.Fatal("empty content accepted")
	}

	client = NewClient(config.LLM{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Classify(context.Background(), ClassifyRequest{Content: "hello"}); err == nil {
		t.Fatal("missing api key accepted")
	}
}

func TestCompleteJSONRetriesOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	var slept []time.Duration
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write(chatResponse(`{"ok":true}`))
	}, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("content = %q", content)
	}
	if calls.Load() != 2 {
		t.Fatalf("requests = %d, want 2", calls.Load())
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("slept = %v, want one 2s delay honoring Retry-After", slept)
	}
}

func TestCompleteJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}, WithSleeper(func(time.Duration) {}))

	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("401 did not surface an error")
	}
	if calls.Load() != 1 {
		t.Fatalf("requests = %d, want 1", calls.Load())
	}
}

func TestCompleteJSONGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithSleeper(func(time.Duration) {}), WithRetryMaxAttempts(3))

	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("persistent 500s did not surface an error")
	}
	if calls.Load() != 3 {
		t.Fatalf("requests = %d, want 3", calls.Load())
	}
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatResponse(`{"ok":true}`))
	})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check: %v", err)
	}
}

func TestDecodeModelJSONStripsCodeFences(t *testing.T) {
	var parsed struct {
		OK bool `json:"ok"`
	}
	payload := "```json\n{\"ok\":true}\n```"
	if err := DecodeModelJSON(payload, &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !parsed.OK {
		t.Fatal("fenced payload not decoded")
	}
}
