package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/batchalign/internal/shared"
)

// FileKind is the declared category of an [InputFile].
type FileKind string

const (
	KindAudio      FileKind = "audio"
	KindTranscript FileKind = "transcript"
)

// InputFile is one selected file. Content is never modified after selection.
type InputFile struct {
	Name    string   `json:"name"`
	Path    string   `json:"path,omitempty"`
	Size    int64    `json:"size"`
	Kind    FileKind `json:"kind"`
	Content []byte   `json:"-"`
}

// NewInputFile builds an in-memory [InputFile] whose size is the content length.
func NewInputFile(name string, kind FileKind, content []byte) InputFile {
	return InputFile{Name: name, Size: int64(len(content)), Kind: kind, Content: content}
}

// BaseIdentifier returns the file name without its final extension segment.
func (f InputFile) BaseIdentifier() string {
	return shared.BaseIdentifier(f.Name)
}

// WorkItem pairs one audio file with one transcript. Index is the zero-based submission position.
type WorkItem struct {
	Index      int       `json:"index"`
	Audio      InputFile `json:"audio"`
	Transcript InputFile `json:"transcript"`
}

// MatchMode selects the pairing strategy.
type MatchMode string

const (
	MatchAuto       MatchMode = "auto"
	MatchPositional MatchMode = "positional"
)

// ParseMatchMode parses "auto" or "positional", case-insensitively.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchAuto:
		return MatchAuto, nil
	case MatchPositional:
		return MatchPositional, nil
	default:
		return "", fmt.Errorf("%w: match mode %q (want auto or positional)", shared.ErrInvalidArgument, s)
	}
}

// OutcomeStatus tags the [Outcome] variant.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailure OutcomeStatus = "failure"
	StatusSkipped OutcomeStatus = "skipped"
)

// FailureKind classifies a failed submission.
type FailureKind string

const (
	FailureInvalidResponse FailureKind = "invalid_response"
	FailureHTTP            FailureKind = "http_error"
	FailureNetwork         FailureKind = "network_error"
	FailureTimeout         FailureKind = "timeout"
	FailureInternal        FailureKind = "internal_error"
)

// Outcome is the result of processing one [WorkItem].
//
// Response is set only for [StatusSuccess]; Kind only for [StatusFailure].
type Outcome struct {
	Status   OutcomeStatus `json:"status"`
	Kind     FailureKind   `json:"kind,omitempty"`
	Message  string        `json:"message,omitempty"`
	Response *Payload      `json:"response,omitempty"`
}

// Succeeded builds a success [Outcome].
func Succeeded(p Payload) Outcome {
	return Outcome{Status: StatusSuccess, Response: &p}
}

// Failed builds a failure [Outcome].
func Failed(kind FailureKind, message string) Outcome {
	return Outcome{Status: StatusFailure, Kind: kind, Message: message}
}

// MessageCancelled is the [Skipped] message for items a cancelled run never finished.
const MessageCancelled = "cancelled"

// Skipped builds a skipped [Outcome] for items a cancelled run never processed.
func Skipped(message string) Outcome {
	return Outcome{Status: StatusSkipped, Message: message}
}

func (o Outcome) IsSuccess() bool { return o.Status == StatusSuccess }
func (o Outcome) IsFailure() bool { return o.Status == StatusFailure }
func (o Outcome) IsSkipped() bool { return o.Status == StatusSkipped }

// Payload is the JSON body returned by the alignment service on success.
//
// The body is kept verbatim; object fields are indexed lazily for lookups.
type Payload struct {
	raw    json.RawMessage
	fields map[string]json.RawMessage
}

// Well-known payload fields.
const (
	FieldMessage       = "message"
	FieldTimestampData = "timestamp_data"
	FieldError         = "error"
)

// NewPayload validates body as JSON and wraps it.
func NewPayload(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return Payload{}, fmt.Errorf("%w: response is not valid JSON", shared.ErrInvalidInput)
	}

	p := Payload{raw: append(json.RawMessage(nil), trimmed...)}
	if trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			p.fields = fields
		}
	}
	return p, nil
}

// Raw returns the body exactly as received (whitespace trimmed).
func (p Payload) Raw() []byte {
	return p.raw
}

// Field returns the raw JSON value of a top-level object field.
func (p Payload) Field(name string) (json.RawMessage, bool) {
	v, ok := p.fields[name]
	if !ok || string(v) == "null" {
		return nil, false
	}
	return v, true
}

// Message returns the optional human-readable "message" string.
func (p Payload) Message() (string, bool) {
	v, ok := p.Field(FieldMessage)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// TimestampData returns the exportable "timestamp_data" field.
//
// A JSON string is returned unquoted; any other JSON value is returned as raw JSON.
// Falsy values ("", false, 0, null) count as absent.
func (p Payload) TimestampData() ([]byte, bool) {
	v, ok := p.Field(FieldTimestampData)
	if !ok {
		return nil, false
	}
	switch {
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil || s == "" {
			return nil, false
		}
		return []byte(s), true
	case bytes.Equal(v, []byte("false")):
		return nil, false
	case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
		var n float64
		if err := json.Unmarshal(v, &n); err != nil || n == 0 {
			return nil, false
		}
	}
	return []byte(v), true
}

// MarshalJSON writes the payload verbatim.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}

// UnmarshalJSON restores a payload from its verbatim JSON.
func (p *Payload) UnmarshalJSON(data []byte) error {
	parsed, err := NewPayload(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// BatchResult is one entry of the Result Log.
type BatchResult struct {
	Index          int           `json:"index"`
	AudioName      string        `json:"audio_name"`
	TranscriptName string        `json:"transcript_name"`
	Outcome        Outcome       `json:"outcome"`
	Duration       time.Duration `json:"duration"`
}

// NewBatchResult records the outcome for item.
func NewBatchResult(item WorkItem, outcome Outcome, d time.Duration) BatchResult {
	return BatchResult{
		Index:          item.Index,
		AudioName:      item.Audio.Name,
		TranscriptName: item.Transcript.Name,
		Outcome:        outcome,
		Duration:       d,
	}
}

// RunStatus is the batch runner's lifecycle state.
type RunStatus string

const (
	RunIdle      RunStatus = "idle"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
)

// Finished reports whether s is a terminal state.
func (s RunStatus) Finished() bool {
	return s == RunCompleted || s == RunCancelled
}

// RunState is the accumulated state of one batch run.
//
// Completed only grows, one entry per processed item, and never exceeds Total.
type RunState struct {
	ID           string        `json:"id"`
	Total        int           `json:"total"`
	Completed    []BatchResult `json:"completed"`
	CurrentIndex int           `json:"current_index"`
	Status       RunStatus     `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at,omitzero"`
}

// NewRunState creates an idle state for total items.
func NewRunState(id string, total int) *RunState {
	return &RunState{
		ID:        id,
		Total:     total,
		Completed: make([]BatchResult, 0, total),
		Status:    RunIdle,
	}
}

// Snapshot returns a copy that shares nothing mutable with s.
func (s *RunState) Snapshot() RunState {
	c := *s
	c.Completed = append([]BatchResult(nil), s.Completed...)
	return c
}

// Pending returns the number of items not yet recorded.
func (s RunState) Pending() int {
	return s.Total - len(s.Completed)
}

// NamedArtifact is one exportable file produced from a successful result.
type NamedArtifact struct {
	Name    string `json:"name"`
	Content []byte `json:"-"`
}
