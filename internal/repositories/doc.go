// Package repositories implements SQLite persistence for batch run history.
//
// Key Implementations:
//   - [RunRepository] : one row per batch run with status and outcome counts
//   - [ResultRepository] : the append-only result log of each run, raw responses included
//   - [RunRecorder] : adapts both to tasks.ResultRecorder so a live run is stored as it executes
//
// Runs support soft deletes via deleted_at timestamps and are excluded from queries once deleted.
//
// Sequence numbers provide stable, human-readable ordering (run #42) independent of UUIDs.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
