package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelver/internal/config"
	"shelver/internal/services"
)

func TestNewReturnsNilWhenDisabled(t *testing.T) {
	if client := New(config.YouTube{Enabled: false}); client != nil {
		t.Fatal("disabled config produced a client")
	}
}

func TestFetchReturnsTranscript(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"title":" Talk Title ","transcript":" spoken text "}`))
	}))
	defer server.Close()

	client := New(config.YouTube{Enabled: true, BaseURL: server.URL})
	transcript, err := client.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/transcripts/dQw4w9WgXcQ" {
		t.Fatalf("path = %q", gotPath)
	}
	if transcript.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("video id = %q", transcript.VideoID)
	}
	if transcript.Title != "Talk Title" || transcript.Transcript != "spoken text" {
		t.Fatalf("transcript = %+v", transcript)
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(config.YouTube{Enabled: true, BaseURL: server.URL})
	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("want not-found error, got %v", err)
	}
}

func TestFetchRequiresVideoID(t *testing.T) {
	client := New(config.YouTube{Enabled: true, BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Fetch(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		found   bool
	}{
		{
			name:    "watch url",
			content: "see https://www.youtube.com/watch?v=dQw4w9WgXcQ for details",
			want:    "dQw4w9WgXcQ",
			found:   true,
		},
		{
			name:    "watch url with extra params",
			content: "https://youtube.com/watch?list=PL123&v=dQw4w9WgXcQ&t=42",
			want:    "dQw4w9WgXcQ",
			found:   true,
		},
		{
			name:    "short link",
			content: "clip: https://youtu.be/AbC-12_xYz9",
			want:    "AbC-12_xYz9",
			found:   true,
		},
		{
			name:    "shorts",
			content: "https://www.youtube.com/shorts/AbC-12_xYz9",
			want:    "AbC-12_xYz9",
			found:   true,
		},
		{
			name:    "embed",
			content: `<iframe src="https://www.youtube.com/embed/AbC-12_xYz9">`,
			want:    "AbC-12_xYz9",
			found:   true,
		},
		{
			name:    "no link",
			content: "just a note about videos in general",
		},
		{
			name:    "id too short",
			content: "https://youtu.be/short",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractVideoID(tt.content)
			if found != tt.found || got != tt.want {
				t.Fatalf("ExtractVideoID() = %q, %v; want %q, %v", got, found, tt.want, tt.found)
			}
		})
	}
}
