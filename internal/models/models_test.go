package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/batchalign/internal/shared"
)

func TestPayload(t *testing.T) {
	t.Run("object with message and string timestamp data", func(t *testing.T) {
		p, err := NewPayload([]byte(`  {"message":"aligned 12 words","timestamp_data":"{\"words\":[]}"}  `))
		if err != nil {
			t.Fatalf("NewPayload() error = %v", err)
		}

		if msg, ok := p.Message(); !ok || msg != "aligned 12 words" {
			t.Errorf("Message() = (%q, %v)", msg, ok)
		}

		data, ok := p.TimestampData()
		if !ok || string(data) != `{"words":[]}` {
			t.Errorf("TimestampData() = (%s, %v)", data, ok)
		}
	})

	t.Run("object timestamp data is kept raw", func(t *testing.T) {
		p, err := NewPayload([]byte(`{"timestamp_data":{"words":[{"w":"hi","start":0.1}]}}`))
		if err != nil {
			t.Fatalf("NewPayload() error = %v", err)
		}

		data, ok := p.TimestampData()
		if !ok || string(data) != `{"words":[{"w":"hi","start":0.1}]}` {
			t.Errorf("TimestampData() = (%s, %v)", data, ok)
		}
		if _, ok := p.Message(); ok {
			t.Error("Message() should be absent")
		}
	})

	t.Run("null fields are absent", func(t *testing.T) {
		p, err := NewPayload([]byte(`{"message":null,"timestamp_data":null}`))
		if err != nil {
			t.Fatalf("NewPayload() error = %v", err)
		}
		if _, ok := p.Message(); ok {
			t.Error("null message should be absent")
		}
		if _, ok := p.TimestampData(); ok {
			t.Error("null timestamp_data should be absent")
		}
	})

	t.Run("falsy timestamp_data is absent", func(t *testing.T) {
		for _, raw := range []string{`""`, `false`, `0`, `-0.0`} {
			p, err := NewPayload([]byte(`{"timestamp_data":` + raw + `}`))
			if err != nil {
				t.Fatalf("NewPayload(%s) error = %v", raw, err)
			}
			if data, ok := p.TimestampData(); ok {
				t.Errorf("timestamp_data %s should be absent, got %q", raw, data)
			}
		}
	})

	t.Run("truthy scalar timestamp_data is kept", func(t *testing.T) {
		for raw, want := range map[string]string{`true`: "true", `12.5`: "12.5", `[]`: "[]", `{}`: "{}"} {
			p, err := NewPayload([]byte(`{"timestamp_data":` + raw + `}`))
			if err != nil {
				t.Fatalf("NewPayload(%s) error = %v", raw, err)
			}
			if data, ok := p.TimestampData(); !ok || string(data) != want {
				t.Errorf("TimestampData(%s) = (%q, %v), want %q", raw, data, ok, want)
			}
		}
	})

	t.Run("non-object JSON is accepted without fields", func(t *testing.T) {
		p, err := NewPayload([]byte(`[1,2,3]`))
		if err != nil {
			t.Fatalf("NewPayload() error = %v", err)
		}
		if _, ok := p.Field("message"); ok {
			t.Error("array payload has no fields")
		}
		if string(p.Raw()) != `[1,2,3]` {
			t.Errorf("Raw() = %s", p.Raw())
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		for _, body := range []string{"", "   ", "<html>", `{"a":`} {
			if _, err := NewPayload([]byte(body)); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("NewPayload(%q) error = %v, want ErrInvalidInput", body, err)
			}
		}
	})

	t.Run("JSON round trip inside a result", func(t *testing.T) {
		p, _ := NewPayload([]byte(`{"message":"ok"}`))
		res := BatchResult{Index: 0, AudioName: "a.wav", Outcome: Succeeded(p)}

		data, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}

		var back BatchResult
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if msg, ok := back.Outcome.Response.Message(); !ok || msg != "ok" {
			t.Errorf("restored message = (%q, %v)", msg, ok)
		}
	})
}

func TestOutcome(t *testing.T) {
	p, _ := NewPayload([]byte(`{}`))
	tests := []struct {
		name    string
		outcome Outcome
		success bool
		failure bool
		skipped bool
	}{
		{"success", Succeeded(p), true, false, false},
		{"failure", Failed(FailureHTTP, "boom"), false, true, false},
		{"skipped", Skipped("cancelled"), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.outcome.IsSuccess() != tt.success || tt.outcome.IsFailure() != tt.failure || tt.outcome.IsSkipped() != tt.skipped {
				t.Errorf("unexpected predicates for %+v", tt.outcome)
			}
		})
	}

	if f := Failed(FailureTimeout, "late"); f.Kind != FailureTimeout || f.Response != nil {
		t.Errorf("Failed() = %+v", f)
	}
}

func TestParseMatchMode(t *testing.T) {
	for in, want := range map[string]MatchMode{"auto": MatchAuto, "AUTO": MatchAuto, " positional ": MatchPositional} {
		got, err := ParseMatchMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMatchMode(%q) = (%q, %v), want %q", in, got, err, want)
		}
	}

	if _, err := ParseMatchMode("fuzzy"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRunState(t *testing.T) {
	state := NewRunState("r-1", 3)
	if state.Status != RunIdle || state.Pending() != 3 {
		t.Fatalf("new state = %+v", state)
	}

	state.Completed = append(state.Completed, BatchResult{Index: 0, AudioName: "a.wav", Outcome: Failed(FailureNetwork, "x")})
	snap := state.Snapshot()

	state.Completed = append(state.Completed, BatchResult{Index: 1, AudioName: "b.wav"})
	state.Completed[0].AudioName = "changed.wav"

	if len(snap.Completed) != 1 || snap.Completed[0].AudioName != "a.wav" {
		t.Errorf("snapshot shares memory with state: %+v", snap.Completed)
	}
	if snap.Pending() != 2 {
		t.Errorf("snapshot pending = %d, want 2", snap.Pending())
	}

	if !RunCompleted.Finished() || !RunCancelled.Finished() || RunRunning.Finished() {
		t.Error("unexpected Finished() results")
	}
}

func TestRun(t *testing.T) {
	t.Run("ApplyState", func(t *testing.T) {
		p, _ := NewPayload([]byte(`{}`))
		start := time.Now().Add(-time.Minute)
		end := time.Now()
		state := RunState{
			Total:  4,
			Status: RunCancelled,
			Completed: []BatchResult{
				{Outcome: Succeeded(p)},
				{Outcome: Failed(FailureTimeout, "t")},
				{Outcome: Skipped("cancelled")},
				{Outcome: Skipped("cancelled")},
			},
			StartedAt:  start,
			FinishedAt: end,
		}

		run := NewRun(1, MatchAuto, "http://localhost/api/align", 4)
		run.ApplyState(state)

		if run.Succeeded() != 1 || run.Failed() != 1 || run.Skipped() != 2 || run.Pending() != 0 {
			t.Errorf("counts = %d/%d/%d pending %d", run.Succeeded(), run.Failed(), run.Skipped(), run.Pending())
		}
		if run.Status() != RunCancelled {
			t.Errorf("status = %s", run.Status())
		}
		if run.StartedAt() == nil || !run.StartedAt().Equal(start) || run.FinishedAt() == nil {
			t.Error("timestamps not applied")
		}
		if err := run.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name string
			run  *Run
		}{
			{"bad status", func() *Run { r := NewRun(1, MatchAuto, "x", 1); r.SetStatus("paused"); return r }()},
			{"bad mode", NewRun(1, "fuzzy", "x", 1)},
			{"no endpoint", NewRun(1, MatchAuto, "", 1)},
			{"negative total", NewRun(1, MatchAuto, "x", -1)},
			{"counts exceed total", func() *Run { r := NewRun(1, MatchAuto, "x", 1); r.SetCounts(1, 1, 0); return r }()},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := tt.run.Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})
}

func TestInputFile(t *testing.T) {
	f := NewInputFile("take.01.wav", KindAudio, []byte("RIFF"))
	if f.Size != 4 {
		t.Errorf("Size = %d, want 4", f.Size)
	}
	if f.BaseIdentifier() != "take.01" {
		t.Errorf("BaseIdentifier() = %q", f.BaseIdentifier())
	}
}
