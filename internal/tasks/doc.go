// Package tasks pairs inputs into work items and runs them against the alignment service.
//
// # Matching
//
// [Match] turns two unordered file lists into ordered [models.WorkItem] values:
//   - auto: pair by base identifier (name without its last extension); the
//     first transcript with the same identifier wins
//   - positional: pair by index, dropping the longer list's extras
//
// [Unmatched] reports what was left over so callers can warn about it.
//
// # Batch Runner
//
// [BatchRunner] drives items through a [services.Submitter] strictly one at a
// time:
//
//	Idle -> Running -> Completed
//	                \-> Cancelled
//
// Each item yields exactly one [models.BatchResult], appended to the result log
// in submission order. Failures are data: a failed item never stops the run.
// An empty item list is the only error that stops a run before it starts,
// together with a failed pre-flight probe when one is configured.
//
// # Progress Reporting
//
// Runs emit [Event] values on a caller-owned channel: item started, item done
// (with a state snapshot), and run completed. Sends wait for the receiver so
// no event is dropped while the run is live.
//
// # Result Recording
//
// The optional [ResultRecorder] receives the run start, every result, and the
// final state (repositories.RunRecorder stores them in SQLite). Recorder
// errors are logged and ignored.
package tasks
