package tasks

import (
	"github.com/desertthunder/batchalign/internal/models"
)

// Match pairs audio files with transcripts into ordered work items.
//
// In [models.MatchAuto] mode each audio file takes the first transcript with
// the same base identifier. Transcripts stay available after being claimed, so
// two audio files that share a base identifier both pair with that transcript.
// Audio without a transcript is dropped.
//
// In [models.MatchPositional] mode audio[i] pairs with transcripts[i] up to the
// shorter of the two lists.
func Match(audio, transcripts []models.InputFile, mode models.MatchMode) []models.WorkItem {
	var items []models.WorkItem

	switch mode {
	case models.MatchPositional:
		n := min(len(audio), len(transcripts))
		items = make([]models.WorkItem, 0, n)
		for i := range n {
			items = append(items, models.WorkItem{Index: i, Audio: audio[i], Transcript: transcripts[i]})
		}
	default:
		for _, a := range audio {
			base := a.BaseIdentifier()
			for _, t := range transcripts {
				if t.BaseIdentifier() == base {
					items = append(items, models.WorkItem{Index: len(items), Audio: a, Transcript: t})
					break
				}
			}
		}
	}
	return items
}

// Unmatched returns the names of audio files and transcripts that appear in no item.
func Unmatched(audio, transcripts []models.InputFile, items []models.WorkItem) (audioNames, transcriptNames []string) {
	usedAudio := make(map[string]int, len(items))
	usedTranscripts := make(map[string]int, len(items))
	for _, it := range items {
		usedAudio[it.Audio.Name]++
		usedTranscripts[it.Transcript.Name]++
	}

	for _, a := range audio {
		if usedAudio[a.Name] > 0 {
			usedAudio[a.Name]--
			continue
		}
		audioNames = append(audioNames, a.Name)
	}
	for _, t := range transcripts {
		if _, ok := usedTranscripts[t.Name]; ok {
			continue
		}
		transcriptNames = append(transcriptNames, t.Name)
	}
	return audioNames, transcriptNames
}

// DuplicateBases returns the base identifiers claimed by more than one audio file.
func DuplicateBases(items []models.WorkItem) []string {
	seen := make(map[string]int, len(items))
	var dups []string
	for _, it := range items {
		base := it.Audio.BaseIdentifier()
		seen[base]++
		if seen[base] == 2 {
			dups = append(dups, base)
		}
	}
	return dups
}
