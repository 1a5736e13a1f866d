// Package ledger persists per-file batch progress in SQLite so interrupted
// batches can resume.
//
// The Store records one row per batch and one row per source file. File rows
// move through the one-way state machine pending -> extracting ->
// transcribing -> chunking -> done, with failed reachable from any
// non-terminal state. Files marked done are skipped when a batch is resumed;
// files stranded mid-stage or failed are reset to pending by ResetInFlight,
// which is the sole backward transition and models the explicit retry at
// resume.
//
// Treat this package as the single source of truth for batch lifecycle
// semantics; when you add statuses, update schema.sql and bump schemaVersion.
package ledger
