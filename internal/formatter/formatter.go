// package formatter builds run summaries, reports, manifests, and timestamp artifacts from a [models.RunState]
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/shared"
)

// Report formats accepted by [Render].
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// ArtifactSuffix is appended to the audio base identifier to name a timestamp artifact.
const ArtifactSuffix = "_timestamp.json"

// Summary holds the aggregate counts of a run plus its display text.
type Summary struct {
	Success     int    `json:"success"`
	Failure     int    `json:"failure"`
	Skipped     int    `json:"skipped"`
	Pending     int    `json:"pending"`
	DisplayText string `json:"-"`
}

// Summarize counts outcomes. Pending is Total minus the recorded results.
func Summarize(state models.RunState) Summary {
	s := Summary{Pending: state.Pending()}
	for _, r := range state.Completed {
		switch r.Outcome.Status {
		case models.StatusSuccess:
			s.Success++
		case models.StatusFailure:
			s.Failure++
		case models.StatusSkipped:
			s.Skipped++
		}
	}
	s.DisplayText = DisplayText(state.Completed)
	return s
}

// DisplayText renders one entry per result in log order, each followed by a blank line.
func DisplayText(results []models.BatchResult) string {
	var buf strings.Builder

	buf.WriteString("📊 Batch results:\n\n")
	for _, r := range results {
		switch r.Outcome.Status {
		case models.StatusSuccess:
			fmt.Fprintf(&buf, "✅ %s: Success\n", r.AudioName)
			if r.Outcome.Response != nil {
				if msg, ok := r.Outcome.Response.Message(); ok {
					fmt.Fprintf(&buf, "   %s\n", msg)
				}
			}
		case models.StatusSkipped:
			fmt.Fprintf(&buf, "⏭ %s: Skipped (%s)\n", r.AudioName, r.Outcome.Message)
		default:
			fmt.Fprintf(&buf, "❌ %s: %s\n", r.AudioName, r.Outcome.Message)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// ArtifactName returns the artifact file name for an audio file.
func ArtifactName(audioName string) string {
	return shared.BaseIdentifier(audioName) + ArtifactSuffix
}

// ExportArtifacts returns one artifact per successful result whose payload
// carries timestamp data, in log order. Other results produce nothing.
func ExportArtifacts(state models.RunState) []models.NamedArtifact {
	var artifacts []models.NamedArtifact
	for _, r := range state.Completed {
		if !r.Outcome.IsSuccess() || r.Outcome.Response == nil {
			continue
		}
		data, ok := r.Outcome.Response.TimestampData()
		if !ok {
			continue
		}
		artifacts = append(artifacts, models.NamedArtifact{Name: ArtifactName(r.AudioName), Content: data})
	}
	return artifacts
}

// WriteArtifacts writes each artifact into dir and returns the written paths.
// An artifact whose name repeats an earlier one overwrites it.
func WriteArtifacts(dir string, artifacts []models.NamedArtifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(dir, filepath.Base(a.Name))
		if err := os.WriteFile(path, a.Content, 0644); err != nil {
			return paths, fmt.Errorf("failed to write artifact %s: %w", a.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Render produces a report of state in format.
func Render(state models.RunState, format string) ([]byte, error) {
	switch format {
	case FormatText, "", "txt":
		return ExportToText(state)
	case FormatJSON:
		return ExportToJSON(state)
	case FormatCSV:
		return ExportToCSV(state)
	case FormatMarkdown, "md":
		return ExportToMarkdown(state)
	default:
		return nil, fmt.Errorf("%w: report format %q", shared.ErrInvalidArgument, format)
	}
}

// ReportFilename returns the report file name of run runID for format.
// Names are prefixed with the run ID so that runs sharing a directory keep their own report.
func ReportFilename(runID, format string) string {
	ext := ".txt"
	switch format {
	case FormatJSON:
		ext = ".json"
	case FormatCSV:
		ext = ".csv"
	case FormatMarkdown, "md":
		ext = ".md"
	}
	return runPrefix(runID) + "report" + ext
}

func runPrefix(runID string) string {
	if runID == "" {
		return ""
	}
	return runID + "_"
}

// WriteReport renders state in format and writes it to path.
func WriteReport(state models.RunState, format, path string) (string, error) {
	data, err := Render(state, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// ExportToText renders the counts followed by the display text.
func ExportToText(state models.RunState) ([]byte, error) {
	var buf bytes.Buffer
	s := Summarize(state)

	buf.WriteString(fmt.Sprintf("Run: %s (%s)\n", state.ID, state.Status))
	buf.WriteString(fmt.Sprintf("Success: %d  Failure: %d  Skipped: %d  Pending: %d\n\n", s.Success, s.Failure, s.Skipped, s.Pending))
	buf.WriteString(s.DisplayText)

	return buf.Bytes(), nil
}

type jsonReport struct {
	Summary Summary         `json:"summary"`
	Run     models.RunState `json:"run"`
}

// ExportToJSON renders the summary counts and the full run state, raw responses included.
func ExportToJSON(state models.RunState) ([]byte, error) {
	return shared.MarshalJSON(jsonReport{Summary: Summarize(state), Run: state}, true)
}

// ExportToCSV converts the result log to CSV with columns: Index, Audio, Transcript, Status, Kind, Message, Duration (ms)
func ExportToCSV(state models.RunState) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Audio", "Transcript", "Status", "Kind", "Message", "DurationMS"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range state.Completed {
		record := []string{
			strconv.Itoa(r.Index),
			r.AudioName,
			r.TranscriptName,
			string(r.Outcome.Status),
			string(r.Outcome.Kind),
			resultMessage(r),
			strconv.FormatInt(r.Duration.Milliseconds(), 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the run as a summary table plus a result table.
func ExportToMarkdown(state models.RunState) ([]byte, error) {
	var buf bytes.Buffer
	s := Summarize(state)

	buf.WriteString(fmt.Sprintf("# Alignment run %s\n\n", state.ID))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", state.Status))
	if !state.StartedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Started**: %s\n", state.StartedAt.Format("2006-01-02 15:04:05")))
	}
	if !state.FinishedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Duration**: %s\n", state.FinishedAt.Sub(state.StartedAt).Round(time.Millisecond)))
	}
	buf.WriteString("\n| Success | Failure | Skipped | Pending |\n|---|---|---|---|\n")
	buf.WriteString(fmt.Sprintf("| %d | %d | %d | %d |\n\n", s.Success, s.Failure, s.Skipped, s.Pending))

	buf.WriteString("## Results\n\n")
	buf.WriteString("| # | Audio | Transcript | Status | Message |\n|---|---|---|---|---|\n")
	for _, r := range state.Completed {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			r.Index+1,
			escapeCell(r.AudioName),
			escapeCell(r.TranscriptName),
			statusIcon(r.Outcome.Status),
			escapeCell(resultMessage(r)),
		))
	}

	return buf.Bytes(), nil
}

func resultMessage(r models.BatchResult) string {
	if r.Outcome.IsSuccess() && r.Outcome.Response != nil {
		msg, _ := r.Outcome.Response.Message()
		return msg
	}
	return r.Outcome.Message
}

func statusIcon(s models.OutcomeStatus) string {
	switch s {
	case models.StatusSuccess:
		return "✅ success"
	case models.StatusSkipped:
		return "⏭ skipped"
	default:
		return "❌ failure"
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
