package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"shelver/internal/config"
	"shelver/internal/history"
	"shelver/internal/logging"
	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
)

// Executor runs stages for one record at a time. It owns log writing, the
// audit trail, and the bypass-versus-error classification of failures.
type Executor struct {
	cfg      *config.Config
	store    *records.Store
	history  *history.Store
	handlers map[records.Action]stage.Handler
	logger   *slog.Logger
}

// NewExecutor builds an executor over the given handlers. Handlers must
// cover every action; missing ones surface as configuration errors at run
// time.
func NewExecutor(cfg *config.Config, store *records.Store, hist *history.Store, handlers []stage.Handler, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	byAction := make(map[records.Action]stage.Handler, len(handlers))
	for _, handler := range handlers {
		byAction[handler.Action()] = handler
	}
	return &Executor{
		cfg:      cfg,
		store:    store,
		history:  hist,
		handlers: byAction,
		logger:   logger.With(logging.String("component", "executor")),
	}
}

// Outcome summarizes one pipeline pass over a record.
type Outcome struct {
	Status       records.Status
	FailedAction records.Action
	Err          error
}

// RunFrom advances the record from its log cursor toward a terminal state.
// Cancellation is honored between stages, never mid-stage.
func (e *Executor) RunFrom(ctx context.Context, rec *records.FileRecord) Outcome {
	run := &stage.Run{Record: rec}
	e.rebuildContent(ctx, run)
	for {
		action := rec.Cursor()
		if err := ctx.Err(); err != nil {
			return Outcome{Status: rec.DeriveStatus(), Err: err}
		}

		if err := e.executeOne(ctx, action, run); err != nil {
			return Outcome{Status: rec.DeriveStatus(), FailedAction: action, Err: err}
		}

		if action == records.ActionCompleted {
			return Outcome{Status: records.StatusCompleted}
		}
	}
}

// rebuildContent reloads the working text from the note when a run resumes
// past the extraction stage. The content is never persisted on the record,
// so a resumed run reads it back from the file extraction wrote into.
func (e *Executor) rebuildContent(ctx context.Context, run *stage.Run) {
	rec := run.Record
	if run.Content != "" || rec.Cursor().Index() <= records.ActionExtract.Index() {
		return
	}
	data, err := os.ReadFile(rec.CurrentPath())
	if err != nil {
		logging.WithContext(ctx, e.logger).Warn("rebuild working content",
			logging.String("file", rec.CurrentName()),
			logging.Error(err),
		)
		return
	}
	run.Content = string(data)
}

// executeOne runs a single action, short-circuiting when a prior attempt
// already completed, and records the result on the record and in history.
func (e *Executor) executeOne(ctx context.Context, action records.Action, run *stage.Run) error {
	rec := run.Record
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldAction, string(action)))

	if prior, ok := rec.Logs[action]; ok && prior.Error == nil {
		logger.Debug("stage already done, skipping")
		return nil
	}

	handler, ok := e.handlers[action]
	if !ok {
		err := services.Wrap(services.ErrConfiguration, string(action), "dispatch", "no handler registered for action", nil)
		rec.SetLog(action, records.StageLog{
			Timestamp: time.Now().UTC(),
			Error:     &records.StageError{Message: services.Message(err)},
		})
		e.record(ctx, rec, action, history.OutcomeErrored, services.Message(err))
		e.store.Upsert(rec)
		return err
	}

	stageCtx := services.WithAction(ctx, string(action))
	if timeout := e.cfg.StageTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(stageCtx, timeout)
		defer cancel()
	}

	logger.Info("stage starting", logging.String("file", rec.CurrentName()))
	result, err := handler.Execute(stageCtx, run)
	now := time.Now().UTC()

	switch {
	case err == nil && result.Skipped:
		rec.SetLog(action, records.StageLog{Timestamp: now, Skipped: true, Detail: result.Detail})
		e.record(ctx, rec, action, history.OutcomeSkipped, result.Detail)
		logger.Info("stage skipped", logging.String("detail", result.Detail))
	case err == nil:
		rec.SetLog(action, records.StageLog{Timestamp: now, Completed: true, Detail: result.Detail})
		e.record(ctx, rec, action, history.OutcomeCompleted, result.Detail)
		logger.Info("stage completed", logging.String("detail", result.Detail))
	case services.IsBypass(err):
		reason, _ := services.BypassReason(err)
		rec.SetLog(action, records.StageLog{
			Timestamp: now,
			Error:     &records.StageError{Message: reason, Bypass: true},
		})
		e.record(ctx, rec, action, history.OutcomeBypassed, reason)
		logger.Info("stage bypassed", logging.String("reason", reason))
	default:
		if errors.Is(stageCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, services.ErrTimeout) {
			err = services.Wrap(services.ErrTimeout, string(action), "execute", "stage timed out", err)
		}
		rec.SetLog(action, records.StageLog{
			Timestamp: now,
			Error:     &records.StageError{Message: services.Message(err)},
		})
		e.record(ctx, rec, action, history.OutcomeErrored, services.Message(err))
		logger.Error("stage failed", logging.Error(err))
	}

	e.store.Upsert(rec)
	return err
}

// record mirrors a stage outcome into the audit history. History failures
// are logged and never abort a run.
func (e *Executor) record(ctx context.Context, rec *records.FileRecord, action records.Action, outcome history.Outcome, detail string) {
	if e.history == nil {
		return
	}
	event := history.Event{
		RecordID: rec.ID,
		FileName: rec.CurrentName(),
		Action:   action,
		Outcome:  outcome,
		Detail:   detail,
	}
	if err := e.history.Record(ctx, event); err != nil {
		logging.WithContext(ctx, e.logger).Warn("record audit event", logging.Error(err))
	}
}
