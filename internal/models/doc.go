// Package models defines the data model for batch alignment runs.
//
// # Batch Values
//
// [InputFile], [WorkItem], [Outcome], [BatchResult] and [RunState] are plain values passed
// between the matcher, the batch runner and the report builder. A [RunState] handed to a
// consumer is always a snapshot; mutating it never affects the running batch.
//
// # Outcomes
//
// An [Outcome] is a tagged variant: success carries the service's JSON [Payload], failure
// carries a [FailureKind] and message, and skipped marks items left unprocessed by a cancelled run.
//
// # Persistence
//
// [Run] implements [Model] for the run history stored by the repositories package.
package models
