package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/shared"
)

var _ list.Item = pairItem{}

// pairItem wraps [models.WorkItem] to implement [list.Item].
type pairItem struct {
	item models.WorkItem
}

func (i pairItem) FilterValue() string { return i.item.Audio.Name }
func (i pairItem) Title() string {
	return fmt.Sprintf("%d. %s", i.item.Index+1, i.item.Audio.Name)
}
func (i pairItem) Description() string {
	return fmt.Sprintf("↳ %s • %s + %s",
		i.item.Transcript.Name,
		shared.FormatSize(i.item.Audio.Size),
		shared.FormatSize(i.item.Transcript.Size),
	)
}

func pairItems(items []models.WorkItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = pairItem{item: it}
	}
	return out
}
