package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shelver/internal/config"
	"shelver/internal/services"
)

// HTTPDoer describes the HTTP client used by the transcription service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to a Whisper-style /v1/audio/transcriptions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	httpc   HTTPDoer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpc = doer
		}
	}
}

// New builds a transcription client from configuration. It returns nil when
// transcription is disabled so callers can treat the service as absent.
func New(cfg config.Transcription, opts ...Option) *Client {
	if !cfg.Enabled {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   strings.TrimSpace(cfg.Model),
		timeout: timeout,
		httpc:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Available reports whether the client can issue requests.
func (c *Client) Available() bool {
	return c != nil && c.baseURL != ""
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio file at path and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	if !c.Available() {
		return "", services.Wrap(services.ErrConfiguration, "transcribe", "request", "transcription service is not configured", nil)
	}
	audio, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "transcribe", "open", "open audio file", err)
	}
	defer audio.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "transcribe", "encode", "build multipart payload", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", services.Wrap(services.ErrExternalService, "transcribe", "encode", "copy audio into payload", err)
	}
	if c.model != "" {
		if err := writer.WriteField("model", c.model); err != nil {
			return "", services.Wrap(services.ErrExternalService, "transcribe", "encode", "write model field", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(services.ErrExternalService, "transcribe", "encode", "finalize multipart payload", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "transcribe", "request", "build transcription request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrTimeout, "transcribe", "request", "transcription request timed out", err)
		}
		return "", services.Wrap(services.ErrExternalService, "transcribe", "request", "call transcription endpoint", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "transcribe", "response", "read transcription response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("transcription endpoint returned %d", resp.StatusCode)
		return "", services.Wrap(services.ErrExternalService, "transcribe", "response", msg, fmt.Errorf("%s", strings.TrimSpace(string(payload))))
	}

	var decoded transcriptionResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalService, "transcribe", "response", "decode transcription response", err)
	}
	return strings.TrimSpace(decoded.Text), nil
}
