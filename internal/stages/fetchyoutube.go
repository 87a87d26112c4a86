package stages

import (
	"context"

	"shelver/internal/logging"
	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/services/youtube"
	"shelver/internal/stage"
)

// FetchYouTube appends the transcript of a referenced YouTube video to the
// note. The stage is best-effort: any collaborator failure degrades to a
// skip so a missing transcript never blocks the pipeline.
type FetchYouTube struct {
	deps *Deps
}

func NewFetchYouTube(deps *Deps) *FetchYouTube {
	return &FetchYouTube{deps: deps}
}

func (f *FetchYouTube) Action() records.Action {
	return records.ActionFetchYouTube
}

func (f *FetchYouTube) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	videoID, found := youtube.ExtractVideoID(run.Content)
	if !found {
		return stage.Skip("no YouTube link"), nil
	}
	if f.deps.Transcripts == nil {
		return stage.Skip("transcript service not configured"), nil
	}

	transcript, err := f.deps.Transcripts.Fetch(ctx, videoID)
	if err != nil {
		f.deps.logger("fetch_youtube").Warn(
			"transcript fetch failed, continuing without it",
			logging.String("video_id", videoID),
			logging.Error(err),
		)
		return stage.Skip("transcript unavailable: " + services.Message(err)), nil
	}

	section := "\n\n## Transcript\n\n"
	if transcript.Title != "" {
		section = "\n\n## Transcript: " + transcript.Title + "\n\n"
	}
	section += transcript.Transcript + "\n"

	if err := f.deps.Storage.Append(run.Record.CurrentPath(), []byte(section)); err != nil {
		return stage.Result{}, services.Wrap(nil, "fetch_youtube", "write", "append transcript to note", err)
	}
	run.Content += section
	return stage.Done("fetched transcript for " + videoID), nil
}
