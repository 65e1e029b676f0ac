// package inputs turns paths on disk into [models.InputFile] values
package inputs

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/shared"
)

var (
	audioExtensions      = []string{".wav", ".mp3", ".flac", ".m4a", ".ogg", ".oga"}
	transcriptExtensions = []string{".txt", ".lab"}
)

// IsAudio reports whether name has an accepted audio extension.
func IsAudio(name string) bool {
	return slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(name)))
}

// IsTranscript reports whether name has an accepted transcript extension.
func IsTranscript(name string) bool {
	return slices.Contains(transcriptExtensions, strings.ToLower(filepath.Ext(name)))
}

// Accepts reports whether name is valid for kind.
func Accepts(name string, kind models.FileKind) bool {
	switch kind {
	case models.KindAudio:
		return IsAudio(name)
	case models.KindTranscript:
		return IsTranscript(name)
	default:
		return false
	}
}

// Validate checks that every file matches its declared kind.
func Validate(files []models.InputFile) error {
	for _, f := range files {
		if !Accepts(f.Name, f.Kind) {
			return fmt.Errorf("%w: %s is not a valid %s file", shared.ErrInvalidInput, f.Name, f.Kind)
		}
	}
	return nil
}

// Collect reads the files named by paths as inputs of kind.
//
// Directories are expanded one level deep, sorted by name, and filtered to
// files accepted for kind. Files named explicitly must be accepted for kind.
func Collect(paths []string, kind models.FileKind) ([]models.InputFile, error) {
	var files []models.InputFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
		}

		if !info.IsDir() {
			if !Accepts(p, kind) {
				return nil, fmt.Errorf("%w: %s is not a valid %s file", shared.ErrInvalidInput, filepath.Base(p), kind)
			}
			f, err := Read(p, kind)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}

		for _, e := range entries {
			if e.IsDir() || !Accepts(e.Name(), kind) {
				continue
			}
			f, err := Read(filepath.Join(p, e.Name()), kind)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
		}
	}
	return files, nil
}

// Read loads a single file.
func Read(path string, kind models.FileKind) (models.InputFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.InputFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f := models.NewInputFile(filepath.Base(path), kind, content)
	f.Path = path
	return f, nil
}

// Split sorts a mixed list of paths into audio and transcript paths.
// Paths with any other extension are returned in ignored.
func Split(paths []string) (audio, transcripts, ignored []string) {
	for _, p := range paths {
		switch {
		case IsAudio(p):
			audio = append(audio, p)
		case IsTranscript(p):
			transcripts = append(transcripts, p)
		default:
			ignored = append(ignored, p)
		}
	}
	return audio, transcripts, ignored
}
