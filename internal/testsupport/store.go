package testsupport

import (
	"testing"

	"shelver/internal/config"
	"shelver/internal/history"
	"shelver/internal/logging"
	"shelver/internal/records"
)

// MustOpenStore opens a record store for the test config and closes it when
// the test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg.RecordDocumentPath(), logging.NewNop(), records.WithDebounce(cfg.PersistDebounce()))
	if err != nil {
		t.Fatalf("open record store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustOpenHistory opens an audit history store for the test config and
// closes it when the test finishes.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	hist, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() {
		_ = hist.Close()
	})
	return hist
}
