package stages

import (
	"context"
	"strings"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
)

// Extract produces the working text for the rest of the pipeline: markdown
// and text files are read as-is, audio is transcribed, and images go through
// the classifier's text extraction. Media text is written into the container
// note so a later retry can recover it without re-calling the service.
type Extract struct {
	deps *Deps
}

func NewExtract(deps *Deps) *Extract {
	return &Extract{deps: deps}
}

func (e *Extract) Action() records.Action {
	return records.ActionExtract
}

func (e *Extract) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	rec := run.Record

	if rec.AttachmentPath == "" {
		data, err := e.deps.Storage.Read(rec.CurrentPath())
		if err != nil {
			return stage.Result{}, services.Wrap(services.ErrStaleFile, "extract", "read", "read note content", err)
		}
		run.Content = string(data)
		return stage.Done("read note"), nil
	}

	if recovered, ok := e.recoverFromNote(rec.CurrentPath()); ok {
		run.Content = recovered
		return stage.Done("recovered extracted text from note"), nil
	}

	var (
		text string
		err  error
	)
	switch kindOf(rec.AttachmentPath) {
	case kindAudio:
		if e.deps.Transcriber == nil {
			return stage.Result{}, services.Wrap(services.ErrConfiguration, "extract", "transcribe", "audio file received but transcription is not configured", nil)
		}
		text, err = e.deps.Transcriber.Transcribe(ctx, rec.AttachmentPath)
	case kindImage:
		if e.deps.Classifier == nil {
			return stage.Result{}, services.Wrap(services.ErrConfiguration, "extract", "image text", "image file received but the classification service is not configured", nil)
		}
		var data []byte
		data, err = e.deps.Storage.Read(rec.AttachmentPath)
		if err != nil {
			return stage.Result{}, services.Wrap(services.ErrStaleFile, "extract", "read", "read attachment", err)
		}
		text, err = e.deps.Classifier.ExtractImageText(ctx, data, imageMIMEType(rec.AttachmentPath))
	default:
		var data []byte
		data, err = e.deps.Storage.Read(rec.AttachmentPath)
		text = string(data)
	}
	if err != nil {
		return stage.Result{}, err
	}

	text = strings.TrimSpace(text)
	if text != "" {
		if appendErr := e.deps.Storage.Append(rec.CurrentPath(), []byte("\n"+text+"\n")); appendErr != nil {
			return stage.Result{}, services.Wrap(nil, "extract", "write", "write extracted text into note", appendErr)
		}
	}
	run.Content = text
	return stage.Done("extracted text"), nil
}

// recoverFromNote returns the note body minus attachment embeds. A non-empty
// body means extraction already ran on an earlier attempt.
func (e *Extract) recoverFromNote(notePath string) (string, bool) {
	data, err := e.deps.Storage.Read(notePath)
	if err != nil {
		return "", false
	}
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "![[") && strings.HasSuffix(trimmed, "]]") {
			continue
		}
		kept = append(kept, line)
	}
	body := strings.TrimSpace(strings.Join(kept, "\n"))
	if body == "" {
		return "", false
	}
	return body, true
}
