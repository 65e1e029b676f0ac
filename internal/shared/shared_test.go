package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestBaseIdentifier(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple extension", in: "a.wav", want: "a"},
		{name: "only final segment stripped", in: "take.01.mp3", want: "take.01"},
		{name: "no extension", in: "README", want: "README"},
		{name: "trailing dot kept", in: "weird.", want: "weird."},
		{name: "dot file", in: ".lab", want: ""},
		{name: "dot in directory only", in: "v1.2/track", want: "v1.2/track"},
		{name: "dot in directory and file", in: "v1.2/track.txt", want: "v1.2/track"},
		{name: "case preserved", in: "Intro.WAV", want: "Intro"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseIdentifier(tt.in); got != tt.want {
				t.Errorf("BaseIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tc := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
	}

	for _, tt := range tc {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLogging(t *testing.T) {
	t.Run("ParseLogLevel", func(t *testing.T) {
		if ll, err := ParseLogLevel(""); err != nil || ll != log.InfoLevel {
			t.Errorf("empty level = (%v, %v), want info", ll, err)
		}
		if ll, err := ParseLogLevel("DEBUG"); err != nil || ll != log.DebugLevel {
			t.Errorf("DEBUG = (%v, %v), want debug", ll, err)
		}
		if _, err := ParseLogLevel("chatty"); err == nil {
			t.Error("expected error for unknown level")
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "run", "r-1")
		logger.Info("started")
		if !strings.Contains(buf.String(), "run=r-1") {
			t.Errorf("expected run field in %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("hello")
	})
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("GenerateID() = %q is not a UUID: %v", id, err)
	}
	if id == GenerateID() {
		t.Error("expected unique IDs")
	}
}
