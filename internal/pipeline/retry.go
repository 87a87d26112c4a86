package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shelver/internal/logging"
	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/vault"
)

// Retry re-enqueues an errored or bypassed record. The note file is located
// again (it may have been moved or renamed by hand), returned to the inbox,
// and the run resumes from the first failed action. Logs for actions that
// succeeded are kept so finished work is never redone.
func (r *Runner) Retry(id string) (*records.FileRecord, error) {
	rec, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	if rec.Status != records.StatusError && rec.Status != records.StatusBypassed {
		return nil, fmt.Errorf("record %s is %s; only error or bypassed records can be retried", id, rec.Status)
	}

	path, err := r.resolveFile(rec)
	if err != nil {
		return nil, err
	}

	inboxPath := filepath.Join(r.cfg.Paths.InboxDir, filepath.Base(path))
	if path != inboxPath {
		inboxPath, err = vault.UniquePath(r.storage, inboxPath)
		if err != nil {
			return nil, fmt.Errorf("resolve inbox path: %w", err)
		}
		if err := r.storage.Move(path, inboxPath); err != nil {
			return nil, fmt.Errorf("return file to inbox: %w", err)
		}
	}

	if rec.NewName != "" {
		rec.NewPath = inboxPath
	} else {
		rec.Path = inboxPath
		rec.NewPath = ""
	}
	for _, action := range records.Actions() {
		if log, ok := rec.Logs[action]; ok && log.Error != nil {
			rec.ClearLog(action)
		}
	}
	rec.Status = rec.DeriveStatus()
	r.store.Upsert(rec)

	r.logger.Info("retrying record",
		logging.String(logging.FieldRecordID, rec.ID),
		logging.String("file", rec.CurrentName()),
		logging.String("cursor", string(rec.Cursor())),
	)
	if err := r.enqueue(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Requeue restarts a completed record from scratch: all logs and the stored
// classification are discarded and the note runs through the pipeline again
// from wherever it currently lives.
func (r *Runner) Requeue(id string) (*records.FileRecord, error) {
	rec, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	if rec.Status != records.StatusCompleted {
		return nil, fmt.Errorf("record %s is %s; only completed records can be requeued", id, rec.Status)
	}

	path, err := r.resolveFile(rec)
	if err != nil {
		return nil, err
	}

	rec.Logs = map[records.Action]records.StageLog{}
	rec.Classification = nil
	rec.Path = path
	rec.NewPath = ""
	rec.Status = records.StatusProcessing
	r.store.Upsert(rec)

	if err := r.enqueue(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// ResumeIncomplete re-enqueues every record a previous process left
// mid-pipeline. The file is re-resolved first because the process may have
// died right after a move; a record whose file cannot be found anywhere is
// logged and left alone. Returns the number of records queued.
func (r *Runner) ResumeIncomplete() int {
	resumed := 0
	for _, rec := range r.store.GetAll() {
		if rec.Status != records.StatusProcessing {
			continue
		}
		path, err := r.resolveFile(rec)
		if err != nil {
			r.logger.Warn("resume interrupted record",
				logging.String(logging.FieldRecordID, rec.ID),
				logging.String("file", rec.CurrentName()),
				logging.Error(err),
			)
			continue
		}
		if path != rec.CurrentPath() {
			if rec.NewName != "" {
				rec.NewPath = path
			} else {
				rec.Path = path
				rec.NewPath = ""
			}
			r.store.Upsert(rec)
		}
		if err := r.enqueue(rec); err != nil {
			continue
		}
		resumed++
		r.logger.Info("resuming interrupted record",
			logging.String(logging.FieldRecordID, rec.ID),
			logging.String("file", rec.CurrentName()),
			logging.String("cursor", string(rec.Cursor())),
		)
	}
	return resumed
}

// resolveFile finds the record's note on disk. The recorded path is trusted
// first; a stale path falls back to a deterministic name search across the
// error folder, the bypass folder, the inbox, and finally the whole vault.
func (r *Runner) resolveFile(rec *records.FileRecord) (string, error) {
	current := rec.CurrentPath()
	if exists, err := r.storage.Exists(current); err == nil && exists {
		return current, nil
	}

	names := candidateNames(rec)
	folders := []string{r.cfg.Paths.ErrorDir, r.cfg.Paths.BypassDir, r.cfg.Paths.InboxDir}
	if path, found, err := vault.FindByName(r.storage, folders, names); err != nil {
		return "", fmt.Errorf("search for %s: %w", rec.CurrentName(), err)
	} else if found {
		return path, nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	var match string
	err := vault.WalkFiles(r.cfg.Paths.VaultDir, func(path string, info os.FileInfo) error {
		if match != "" {
			return filepath.SkipAll
		}
		if _, ok := wanted[info.Name()]; ok {
			match = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan vault for %s: %w", rec.CurrentName(), err)
	}
	if match == "" {
		return "", services.Wrap(services.ErrStaleFile, "retry", "resolve",
			fmt.Sprintf("file not found anywhere in the vault (looked for %s)", strings.Join(names, ", ")), nil)
	}
	return match, nil
}

// candidateNames lists the filenames the record may be stored under, newest
// name first.
func candidateNames(rec *records.FileRecord) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, name := range []string{rec.NewName, filepath.Base(rec.Path), rec.OriginalName} {
		if name == "" || name == "." {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
