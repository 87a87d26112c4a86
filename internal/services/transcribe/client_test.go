package transcribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"shelver/internal/config"
	"shelver/internal/services"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memo.mp3")
	if err := os.WriteFile(path, []byte("fake-audio-bytes"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestNewReturnsNilWhenDisabled(t *testing.T) {
	if client := New(config.Transcription{Enabled: false}); client != nil {
		t.Fatal("disabled config produced a client")
	}
	var client *Client
	if client.Available() {
		t.Fatal("nil client reported available")
	}
}

func TestTranscribeUploadsMultipartAudio(t *testing.T) {
	var gotPath, gotAuth, gotFile, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if file, header, err := r.FormFile("file"); err == nil {
			gotFile = header.Filename
			file.Close()
		} else {
			t.Errorf("file field: %v", err)
		}
		gotModel = r.FormValue("model")
		_, _ = w.Write([]byte(`{"text":"  hello from audio  "}`))
	}))
	defer server.Close()

	client := New(config.Transcription{
		Enabled: true,
		BaseURL: server.URL,
		APIKey:  "secret",
		Model:   "whisper-1",
	})

	text, err := client.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "hello from audio" {
		t.Fatalf("text = %q", text)
	}
	if gotPath != "/v1/audio/transcriptions" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotFile != "memo.mp3" {
		t.Fatalf("file name = %q", gotFile)
	}
	if gotModel != "whisper-1" {
		t.Fatalf("model = %q", gotModel)
	}
}

func TestTranscribeSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(config.Transcription{Enabled: true, BaseURL: server.URL})
	_, err := client.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("want external service error, got %v", err)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request issued for a missing file")
	}))
	defer server.Close()

	client := New(config.Transcription{Enabled: true, BaseURL: server.URL})
	if _, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.mp3")); err == nil {
		t.Fatal("missing file accepted")
	}
}
