package formatter

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/shared"
)

// Manifest formats accepted by [WriteManifest].
const (
	ManifestJSON = "json"
	ManifestYAML = "yaml"
)

// Manifest summarizes a run and the files it produced.
type Manifest struct {
	RunID      string         `json:"run_id" yaml:"run_id"`
	Status     string         `json:"status" yaml:"status"`
	Total      int            `json:"total" yaml:"total"`
	Success    int            `json:"success" yaml:"success"`
	Failure    int            `json:"failure" yaml:"failure"`
	Skipped    int            `json:"skipped" yaml:"skipped"`
	StartedAt  time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time      `json:"finished_at" yaml:"finished_at"`
	Report     string         `json:"report,omitempty" yaml:"report,omitempty"`
	Archive    string         `json:"archive,omitempty" yaml:"archive,omitempty"`
	Items      []ManifestItem `json:"items" yaml:"items"`
}

// ManifestItem is one result in a [Manifest].
type ManifestItem struct {
	Index      int    `json:"index" yaml:"index"`
	Audio      string `json:"audio" yaml:"audio"`
	Transcript string `json:"transcript" yaml:"transcript"`
	Status     string `json:"status" yaml:"status"`
	Kind       string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
	Artifact   string `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
}

// BuildManifest describes state. Artifact paths point into dir for results
// that produced a timestamp artifact.
func BuildManifest(state models.RunState, dir string) *Manifest {
	s := Summarize(state)
	m := &Manifest{
		RunID:      state.ID,
		Status:     string(state.Status),
		Total:      state.Total,
		Success:    s.Success,
		Failure:    s.Failure,
		Skipped:    s.Skipped,
		StartedAt:  state.StartedAt,
		FinishedAt: state.FinishedAt,
		Items:      make([]ManifestItem, 0, len(state.Completed)),
	}

	for _, r := range state.Completed {
		item := ManifestItem{
			Index:      r.Index,
			Audio:      r.AudioName,
			Transcript: r.TranscriptName,
			Status:     string(r.Outcome.Status),
			Kind:       string(r.Outcome.Kind),
			Message:    resultMessage(r),
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Outcome.IsSuccess() && r.Outcome.Response != nil {
			if _, ok := r.Outcome.Response.TimestampData(); ok {
				item.Artifact = filepath.Join(dir, ArtifactName(r.AudioName))
			}
		}
		m.Items = append(m.Items, item)
	}
	return m
}

// ManifestFilename returns the manifest file name of run runID for format.
func ManifestFilename(runID, format string) string {
	if format == ManifestYAML || format == "yml" {
		return runPrefix(runID) + "manifest.yaml"
	}
	return runPrefix(runID) + "manifest.json"
}

// WriteManifest writes m to path as JSON or YAML.
func WriteManifest(m *Manifest, format, path string) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case ManifestJSON, "":
		data, err = shared.MarshalJSON(m, true)
	case ManifestYAML, "yml":
		data, err = yaml.Marshal(m)
	default:
		return fmt.Errorf("%w: manifest format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ExportArchive packs artifacts into a zip file at path.
// A repeated name keeps only its last artifact, matching [WriteArtifacts].
func ExportArchive(artifacts []models.NamedArtifact, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	last := make(map[string]int, len(artifacts))
	for i, a := range artifacts {
		last[filepath.Base(a.Name)] = i
	}

	zw := zip.NewWriter(f)
	for i, a := range artifacts {
		name := filepath.Base(a.Name)
		if last[name] != i {
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if _, err := w.Write(a.Content); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return f.Close()
}
