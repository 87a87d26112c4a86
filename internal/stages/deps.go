package stages

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shelver/internal/config"
	"shelver/internal/logging"
	"shelver/internal/services/llm"
	"shelver/internal/services/youtube"
	"shelver/internal/stage"
	"shelver/internal/vault"
)

// Classifier is the slice of the LLM client the stages depend on.
type Classifier interface {
	Classify(ctx context.Context, req llm.ClassifyRequest) (llm.Classification, error)
	ExtractImageText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// TranscriptFetcher retrieves the transcript for a YouTube video.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (youtube.Transcript, error)
}

// Deps bundles the collaborators shared by the stage handlers. Optional
// collaborators may be nil; the stages that need them degrade accordingly.
type Deps struct {
	Config      *config.Config
	Storage     vault.Storage
	Logger      *slog.Logger
	Classifier  Classifier
	Transcriber Transcriber
	Transcripts TranscriptFetcher
}

func (d *Deps) logger(component string) *slog.Logger {
	if d == nil || d.Logger == nil {
		return logging.NewNop()
	}
	return d.Logger.With(logging.String("component", component))
}

// VaultFolders lists the top-level destination folders the classifier may
// choose from. The inbox and the engine's own working folders are excluded.
func (d *Deps) VaultFolders() ([]string, error) {
	root := d.Config.Paths.VaultDir
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	reserved := map[string]struct{}{}
	for _, dir := range []string{d.Config.Paths.InboxDir, d.Config.Paths.ErrorDir, d.Config.Paths.BypassDir, d.Config.Paths.AttachmentsDir, d.Config.Paths.LogDir} {
		if rel, err := filepath.Rel(root, dir); err == nil {
			if top, _, _ := strings.Cut(rel, string(filepath.Separator)); top != "" && top != ".." {
				reserved[top] = struct{}{}
			}
		}
	}
	var folders []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, ok := reserved[entry.Name()]; ok {
			continue
		}
		folders = append(folders, entry.Name())
	}
	sort.Strings(folders)
	return folders, nil
}

// All returns one handler per action in canonical execution order.
func All(deps *Deps) []stage.Handler {
	return []stage.Handler{
		NewValidate(deps),
		NewContainer(deps),
		NewMovingAttachment(deps),
		NewExtract(deps),
		NewCleanup(deps),
		NewFetchYouTube(deps),
		NewClassify(deps),
		NewMoving(deps),
		NewRename(deps),
		NewFormatting(deps),
		NewAppend(deps),
		NewTagging(deps),
		NewCompleted(deps),
	}
}
