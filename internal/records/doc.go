// Package records persists per-file processing state and exposes helpers for
// driving the file lifecycle.
//
// The Store is the durable registry of FileRecords, keyed by a stable id
// derived from the file's original path. It is backed by a single JSON
// document on disk; mutations coalesce through a debounced flusher so bursty
// pipelines produce one write instead of many. The in-memory map is the
// source of truth for the process lifetime: persistence failures degrade to
// warnings and a corrupt document is set aside as a backup rather than
// crashing the host.
//
// Treat this package as the single source of truth for record semantics; when
// you add actions or record fields, update the action order and the document
// codec together.
package records
