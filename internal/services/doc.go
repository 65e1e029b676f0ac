// Package services talks to the remote forced-alignment service.
//
// # Submitter
//
// [Submitter] is the single operation the batch runner depends on: send one
// [models.WorkItem] and get back exactly one [models.Outcome]. Submit never
// returns an error; every way a submission can go wrong is folded into a
// failure outcome:
//   - invalid_response: 2xx status but the body is not JSON
//   - http_error: non-2xx status, message taken from the body's "error" field
//     or built as "HTTP <status>: <statusText>"
//   - network_error: no response was received
//   - timeout: the per-item deadline elapsed first
//
// Cancelling the caller's context yields a skipped outcome instead.
//
// # AlignService
//
// [AlignService] implements Submitter with one multipart POST per item
// (fields "audio" and "transcription"). Requests carry any extra headers
// imported with `balign setup endpoint` and, when configured, a bearer token
// through [oauth2.Transport].
//
// # HealthService
//
// [HealthService] wraps the service's probe endpoints (/health, /api/info) and
// is used for the pre-flight check and the health command.
package services
