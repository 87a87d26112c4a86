package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shelver/internal/config"
)

const userAgent = "Shelver-Go/0.1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyFileCompleted(ctx context.Context, name, folder string) error
	NotifyFileBypassed(ctx context.Context, name, reason string) error
	NotifyFileErrored(ctx context.Context, name string, err error) error
	NotifyQueueDrained(ctx context.Context, processed, failed int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		sendCompleted: cfg.Notifications.Completed,
		sendBypassed:  cfg.Notifications.Bypassed,
		sendErrors:    cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	sendCompleted bool
	sendBypassed  bool
	sendErrors    bool
}

func (n *ntfyService) NotifyFileCompleted(ctx context.Context, name, folder string) error {
	if !n.sendCompleted {
		return nil
	}
	name = strings.TrimSpace(name)
	message := fmt.Sprintf("Filed: %s", name)
	if folder = strings.TrimSpace(folder); folder != "" {
		message = fmt.Sprintf("%s → %s", message, folder)
	}
	data := payload{
		title:   "Shelver - Complete",
		message: message,
		tags:    []string{"shelver", "file", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileBypassed(ctx context.Context, name, reason string) error {
	if !n.sendBypassed {
		return nil
	}
	name = strings.TrimSpace(name)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown reason"
	}
	data := payload{
		title:   "Shelver - Bypassed",
		message: fmt.Sprintf("Set aside: %s (%s)", name, reason),
		tags:    []string{"shelver", "file", "bypassed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileErrored(ctx context.Context, name string, err error) error {
	if !n.sendErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error processing ")
	builder.WriteString(strings.TrimSpace(name))
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	data := payload{
		title:    "Shelver - Error",
		message:  builder.String(),
		tags:     []string{"shelver", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueDrained(ctx context.Context, processed, failed int) error {
	if !n.sendCompleted {
		return nil
	}
	var message string
	if failed == 0 {
		message = fmt.Sprintf("Inbox drained: %d files processed", processed)
	} else {
		message = fmt.Sprintf("Inbox drained: %d processed, %d need attention", processed, failed)
	}
	data := payload{
		title:   "Shelver - Inbox Drained",
		message: message,
		tags:    []string{"shelver", "queue", "drained"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Shelver - Test",
		message:  "Notification system test",
		tags:     []string{"shelver", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyFileCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyFileBypassed(context.Context, string, string) error  { return nil }
func (noopService) NotifyFileErrored(context.Context, string, error) error    { return nil }
func (noopService) NotifyQueueDrained(context.Context, int, int) error        { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
