package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"shelver/internal/config"
	"shelver/internal/history"
	"shelver/internal/logging"
	"shelver/internal/notifications"
	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/vault"
)

// ErrAlreadyActive is returned when a record is enqueued while a run for it
// is in flight or waiting.
var ErrAlreadyActive = errors.New("record already queued or running")

type request struct {
	record *records.FileRecord
}

// Runner schedules pipeline passes across a bounded worker pool. At most one
// pass runs per record at a time; independent records process concurrently.
type Runner struct {
	cfg      *config.Config
	store    *records.Store
	storage  vault.Storage
	executor *Executor
	notifier notifications.Service
	logger   *slog.Logger

	queue chan request

	mu        sync.Mutex
	active    map[string]struct{}
	processed int
	failed    int

	wg      sync.WaitGroup
	started bool
	cancel  context.CancelFunc
}

// NewRunner wires the runner over an executor and its collaborators.
func NewRunner(cfg *config.Config, store *records.Store, storage vault.Storage, executor *Executor, hist *history.Store, notifier notifications.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	queueSize := cfg.Workflow.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Runner{
		cfg:      cfg,
		store:    store,
		storage:  storage,
		executor: executor,
		notifier: notifier,
		logger:   logger.With(logging.String("component", "runner")),
		queue:    make(chan request, queueSize),
		active:   make(map[string]struct{}),
	}
}

// Start launches the worker pool. It is a no-op when already started.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	workers := r.cfg.Workflow.Workers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx)
	}
}

// Stop cancels outstanding work and waits for the workers to drain. Runs
// already inside a stage finish that stage before stopping.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	started := r.started
	r.mu.Unlock()
	if !started {
		return
	}
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// EnqueuePath registers a new inbox file (or finds its existing record) and
// schedules a pipeline pass for it. A path the engine itself produced, such
// as a renamed file returned to the inbox by a retry, resolves to the record
// already tracking that file so one physical file never gets two records.
func (r *Runner) EnqueuePath(path string) (*records.FileRecord, error) {
	rec, err := r.store.Get(records.RecordID(path))
	if errors.Is(err, records.ErrNotFound) {
		rec, err = r.store.FindByPath(path)
	}
	if err != nil {
		rec = records.NewRecord(path)
		r.store.Upsert(rec)
	}
	if rec.Status.IsTerminal() {
		return rec, ErrAlreadyActive
	}
	if err := r.enqueue(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// EnqueueRecord schedules a pipeline pass for an existing record.
func (r *Runner) EnqueueRecord(rec *records.FileRecord) error {
	return r.enqueue(rec)
}

func (r *Runner) enqueue(rec *records.FileRecord) error {
	r.mu.Lock()
	if _, busy := r.active[rec.ID]; busy {
		r.mu.Unlock()
		return ErrAlreadyActive
	}
	r.active[rec.ID] = struct{}{}
	r.mu.Unlock()

	select {
	case r.queue <- request{record: rec}:
		return nil
	default:
		r.mu.Lock()
		delete(r.active, rec.ID)
		r.mu.Unlock()
		return errors.New("pipeline queue is full")
	}
}

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-r.queue:
			r.process(ctx, req.record)
		}
	}
}

func (r *Runner) process(ctx context.Context, queued *records.FileRecord) {
	defer func() {
		r.mu.Lock()
		delete(r.active, queued.ID)
		idle := len(r.active) == 0 && len(r.queue) == 0
		processed, failed := r.processed, r.failed
		if idle {
			r.processed, r.failed = 0, 0
		}
		r.mu.Unlock()
		if idle && processed+failed > 1 {
			_ = r.notifier.NotifyQueueDrained(context.Background(), processed, failed)
		}
	}()

	rec, err := r.store.Get(queued.ID)
	if err != nil {
		rec = queued
	}

	runCtx := services.WithRecordID(ctx, rec.ID)
	runCtx = services.WithRequestID(runCtx, uuid.NewString())
	logger := logging.WithContext(runCtx, r.logger)

	logger.Info("run starting",
		logging.String("file", rec.CurrentName()),
		logging.String("cursor", string(rec.Cursor())),
	)

	outcome := r.executor.RunFrom(runCtx, rec)

	switch outcome.Status {
	case records.StatusCompleted:
		r.mu.Lock()
		r.processed++
		r.mu.Unlock()
		folder := ""
		if rec.Classification != nil {
			folder = rec.Classification.DestinationFolder
		}
		logger.Info("run completed", logging.String("file", rec.CurrentName()))
		_ = r.notifier.NotifyFileCompleted(runCtx, rec.CurrentName(), folder)
	case records.StatusBypassed:
		r.mu.Lock()
		r.failed++
		r.mu.Unlock()
		reason, _ := services.BypassReason(outcome.Err)
		if reason == "" {
			if _, log := rec.LastError(); log != nil && log.Error != nil {
				reason = log.Error.Message
			}
		}
		r.relocate(runCtx, rec, r.cfg.Paths.BypassDir)
		logger.Info("run bypassed",
			logging.String("file", rec.CurrentName()),
			logging.String("reason", reason),
		)
		_ = r.notifier.NotifyFileBypassed(runCtx, rec.CurrentName(), reason)
	case records.StatusError:
		r.mu.Lock()
		r.failed++
		r.mu.Unlock()
		r.relocate(runCtx, rec, r.cfg.Paths.ErrorDir)
		logger.Error("run failed",
			logging.String("file", rec.CurrentName()),
			logging.String("action", string(outcome.FailedAction)),
			logging.Error(outcome.Err),
		)
		_ = r.notifier.NotifyFileErrored(runCtx, rec.CurrentName(), outcome.Err)
	default:
		// Cancelled between stages; the record resumes on the next run.
		logger.Info("run interrupted", logging.String("file", rec.CurrentName()))
	}
}

// relocate moves a failed or bypassed file out of the inbox so stuck files
// do not pile up there. Relocation failures are logged, never fatal.
func (r *Runner) relocate(ctx context.Context, rec *records.FileRecord, dir string) {
	current := rec.CurrentPath()
	if exists, err := r.storage.Exists(current); err != nil || !exists {
		return
	}
	if filepath.Dir(current) == dir {
		return
	}
	dest := filepath.Join(dir, filepath.Base(current))
	dest, err := vault.UniquePath(r.storage, dest)
	if err == nil {
		err = r.storage.Move(current, dest)
	}
	if err != nil {
		logging.WithContext(ctx, r.logger).Warn("relocate failed file",
			logging.String("from", current),
			logging.String("to", dest),
			logging.Error(err),
		)
		return
	}
	rec.NewPath = dest
	r.store.Upsert(rec)
}
