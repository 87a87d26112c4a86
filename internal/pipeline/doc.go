// Package pipeline drives records through the stage sequence: the executor
// runs one stage at a time with idempotency and error classification, and
// the runner schedules whole records across a bounded worker pool.
package pipeline
