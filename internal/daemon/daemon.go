package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"shelver/internal/config"
	"shelver/internal/history"
	"shelver/internal/logging"
	"shelver/internal/notifications"
	"shelver/internal/pipeline"
	"shelver/internal/records"
	"shelver/internal/services/llm"
	"shelver/internal/services/transcribe"
	"shelver/internal/services/youtube"
	"shelver/internal/stages"
	"shelver/internal/vault"
	"shelver/internal/watcher"
)

// Daemon coordinates the background services and enforces single-instance
// execution through a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *records.Store
	history  *history.Store
	runner   *pipeline.Runner
	watcher  *watcher.Watcher
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	Records       int
	Stats         map[records.Status]int
	DocumentPath  string
	HistoryDBPath string
	LockFilePath  string
}

// New builds the daemon and all of its collaborators from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	store, err := records.Open(cfg.RecordDocumentPath(), logger, records.WithDebounce(cfg.PersistDebounce()))
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	hist, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open history: %w", err)
	}

	storage := vault.NewFS()
	deps := buildStageDeps(cfg, storage, logger)

	notifier := notifications.NewService(cfg)
	executor := pipeline.NewExecutor(cfg, store, hist, stages.All(deps), logger)
	runner := pipeline.NewRunner(cfg, store, storage, executor, hist, notifier, logger)

	fswatcher, err := watcher.New(cfg, logger)
	if err != nil {
		_ = hist.Close()
		_ = store.Close()
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "shelverd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger.With(logging.String("component", "daemon")),
		store:    store,
		history:  hist,
		runner:   runner,
		watcher:  fswatcher,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// buildStageDeps wires the optional service collaborators. A client is only
// installed when its configuration enables it, so an unconfigured
// integration surfaces as the stage's own configuration error instead of a
// doomed network call.
func buildStageDeps(cfg *config.Config, storage vault.Storage, logger *slog.Logger) *stages.Deps {
	deps := &stages.Deps{
		Config:  cfg,
		Storage: storage,
		Logger:  logger,
	}
	if cfg.LLM.APIKey != "" {
		deps.Classifier = llm.NewClient(cfg.LLM)
	}
	if client := transcribe.New(cfg.Transcription); client != nil {
		deps.Transcriber = client
	}
	if client := youtube.New(cfg.YouTube); client != nil {
		deps.Transcripts = client
	}
	return deps
}

// Store exposes the record store for CLI queries against a live daemon
// configuration.
func (d *Daemon) Store() *records.Store { return d.store }

// History exposes the audit trail store.
func (d *Daemon) History() *history.Store { return d.history }

// Runner exposes the pipeline runner for retry and requeue operations.
func (d *Daemon) Runner() *pipeline.Runner { return d.runner }

// Notifier exposes the notification service.
func (d *Daemon) Notifier() notifications.Service { return d.notifier }

// Start acquires the daemon lock and launches the watcher and worker pool.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another shelver daemon instance is already running")
	}

	ctx, d.cancel = context.WithCancel(ctx)
	d.runner.Start(ctx)

	if resumed := d.runner.ResumeIncomplete(); resumed > 0 {
		d.logger.Info("resumed interrupted records", logging.Int("count", resumed))
	}

	files, err := d.watcher.Watch(ctx)
	if err != nil {
		d.cancel()
		d.runner.Stop()
		_ = d.lock.Unlock()
		return fmt.Errorf("start watcher: %w", err)
	}
	go d.dispatch(ctx, files)

	d.running.Store(true)
	d.logger.Info("shelver daemon started",
		logging.String("inbox", d.cfg.Paths.InboxDir),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// dispatch feeds settled inbox files into the runner.
func (d *Daemon) dispatch(ctx context.Context, files <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-files:
			if !ok {
				return
			}
			rec, err := d.runner.EnqueuePath(path)
			switch {
			case errors.Is(err, pipeline.ErrAlreadyActive):
				d.logger.Debug("file already tracked", logging.String("path", path))
			case err != nil:
				d.logger.Warn("enqueue inbox file", logging.String("path", path), logging.Error(err))
			default:
				d.logger.Info("inbox file queued",
					logging.String(logging.FieldRecordID, rec.ID),
					logging.String("path", path),
				)
			}
		}
	}
}

// Stop halts background processing, flushes the record store, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.runner.Stop()
	_ = d.watcher.Close()
	if err := d.store.Flush(); err != nil {
		d.logger.Error("final record flush", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("shelver daemon stopped")
}

// Close stops the daemon and releases every resource it owns.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if err := d.history.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Status reports runtime information for the CLI status command.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		Records:       d.store.Len(),
		Stats:         d.store.Stats(),
		DocumentPath:  d.store.Path(),
		HistoryDBPath: d.history.Path(),
		LockFilePath:  d.lockPath,
	}
}
