package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"shelver/internal/config"
	"shelver/internal/services"
)

// HTTPDoer describes the HTTP client used by the transcript service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transcript is the fetched transcript for a single video.
type Transcript struct {
	VideoID    string
	Title      string
	Transcript string
}

// Client fetches transcripts from a transcript API service.
type Client struct {
	baseURL string
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

// New builds a transcript client from configuration. It returns nil when the
// YouTube integration is disabled.
func New(cfg config.YouTube, opts ...Option) *Client {
	if !cfg.Enabled {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
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

type transcriptResponse struct {
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
}

// Fetch retrieves the transcript for the given video ID.
func (c *Client) Fetch(ctx context.Context, videoID string) (Transcript, error) {
	if !c.Available() {
		return Transcript{}, services.Wrap(services.ErrConfiguration, "youtube", "request", "transcript service is not configured", nil)
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return Transcript{}, services.Wrap(services.ErrValidation, "youtube", "request", "video id is required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/transcripts/" + url.PathEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrExternalService, "youtube", "request", "build transcript request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Transcript{}, services.Wrap(services.ErrTimeout, "youtube", "request", "transcript request timed out", err)
		}
		return Transcript{}, services.Wrap(services.ErrExternalService, "youtube", "request", "call transcript endpoint", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrExternalService, "youtube", "response", "read transcript response", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Transcript{}, services.Wrap(services.ErrNotFound, "youtube", "response", "no transcript available for video "+videoID, nil)
	case resp.StatusCode != http.StatusOK:
		msg := fmt.Sprintf("transcript endpoint returned %d", resp.StatusCode)
		return Transcript{}, services.Wrap(services.ErrExternalService, "youtube", "response", msg, fmt.Errorf("%s", strings.TrimSpace(string(payload))))
	}

	var decoded transcriptResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Transcript{}, services.Wrap(services.ErrExternalService, "youtube", "response", "decode transcript response", err)
	}
	return Transcript{
		VideoID:    videoID,
		Title:      strings.TrimSpace(decoded.Title),
		Transcript: strings.TrimSpace(decoded.Transcript),
	}, nil
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)youtube\.com/watch\?[^\s)\]"']*v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?i)youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?i)youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?i)youtube\.com/embed/([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID returns the first YouTube video ID referenced in content.
// The second return value reports whether a link was found.
func ExtractVideoID(content string) (string, bool) {
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(content); len(match) == 2 {
			return match[1], true
		}
	}
	return "", false
}
