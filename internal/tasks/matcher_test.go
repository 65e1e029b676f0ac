package tasks

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/desertthunder/batchalign/internal/models"
	tu "github.com/desertthunder/batchalign/internal/testing"
)

type pair struct{ Audio, Transcript string }

func pairs(items []models.WorkItem) []pair {
	out := make([]pair, len(items))
	for i, it := range items {
		if it.Index != i {
			panic("work item index out of order")
		}
		out[i] = pair{it.Audio.Name, it.Transcript.Name}
	}
	return out
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name        string
		audio       []string
		transcripts []string
		mode        models.MatchMode
		want        []pair
	}{
		{
			name:        "Auto Pairs By Base Identifier",
			audio:       []string{"a.wav", "b.mp3"},
			transcripts: []string{"b.txt", "a.lab", "c.txt"},
			mode:        models.MatchAuto,
			want:        []pair{{"a.wav", "a.lab"}, {"b.mp3", "b.txt"}},
		},
		{
			name:        "Auto First Transcript Wins",
			audio:       []string{"a.wav"},
			transcripts: []string{"a.lab", "a.txt"},
			mode:        models.MatchAuto,
			want:        []pair{{"a.wav", "a.lab"}},
		},
		{
			name:        "Auto Drops Unmatched Audio",
			audio:       []string{"x.wav", "a.wav"},
			transcripts: []string{"a.txt"},
			mode:        models.MatchAuto,
			want:        []pair{{"a.wav", "a.txt"}},
		},
		{
			name:        "Auto Shared Base Claims Same Transcript",
			audio:       []string{"a.wav", "a.mp3"},
			transcripts: []string{"a.txt"},
			mode:        models.MatchAuto,
			want:        []pair{{"a.wav", "a.txt"}, {"a.mp3", "a.txt"}},
		},
		{
			name:        "Auto Strips Only Last Extension",
			audio:       []string{"take.01.wav", "noext"},
			transcripts: []string{"take.txt", "take.01.txt", "noext"},
			mode:        models.MatchAuto,
			want:        []pair{{"take.01.wav", "take.01.txt"}, {"noext", "noext"}},
		},
		{
			name:        "Auto Is Case Sensitive",
			audio:       []string{"A.wav"},
			transcripts: []string{"a.txt"},
			mode:        models.MatchAuto,
			want:        []pair{},
		},
		{
			name:        "Positional Drops Extra Audio",
			audio:       []string{"1.wav", "2.wav", "3.wav"},
			transcripts: []string{"x.txt", "y.txt"},
			mode:        models.MatchPositional,
			want:        []pair{{"1.wav", "x.txt"}, {"2.wav", "y.txt"}},
		},
		{
			name:        "Positional Drops Extra Transcripts",
			audio:       []string{"1.wav"},
			transcripts: []string{"x.txt", "y.txt"},
			mode:        models.MatchPositional,
			want:        []pair{{"1.wav", "x.txt"}},
		},
		{
			name:  "Empty Inputs",
			audio: nil,
			mode:  models.MatchAuto,
			want:  []pair{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Match(tu.Files(models.KindAudio, tt.audio...), tu.Files(models.KindTranscript, tt.transcripts...), tt.mode)

			if diff := cmp.Diff(tt.want, pairs(items)); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmatched(t *testing.T) {
	audio := tu.Files(models.KindAudio, "a.wav", "b.mp3", "z.wav")
	transcripts := tu.Files(models.KindTranscript, "b.txt", "a.lab", "c.txt")

	items := Match(audio, transcripts, models.MatchAuto)
	audioNames, transcriptNames := Unmatched(audio, transcripts, items)

	if diff := cmp.Diff([]string{"z.wav"}, audioNames); diff != "" {
		t.Errorf("unmatched audio mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c.txt"}, transcriptNames); diff != "" {
		t.Errorf("unmatched transcripts mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateBases(t *testing.T) {
	items := Match(
		tu.Files(models.KindAudio, "a.wav", "a.mp3", "a.flac", "b.wav"),
		tu.Files(models.KindTranscript, "a.txt", "b.txt"),
		models.MatchAuto,
	)

	if diff := cmp.Diff([]string{"a"}, DuplicateBases(items)); diff != "" {
		t.Errorf("DuplicateBases() mismatch (-want +got):\n%s", diff)
	}
}
