package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRunEvent MsgKind = iota
	MsgRunFinished
)

type runFinished struct {
	state *models.RunState
	err   error
}

// runEventMsg is the constructor for [MsgRunEvent]
func runEventMsg(e tasks.Event) Msg {
	return Msg{kind: MsgRunEvent, data: e}
}

// runFinishedMsg is the constructor for [MsgRunFinished]
func runFinishedMsg(state *models.RunState, err error) Msg {
	return Msg{kind: MsgRunFinished, data: runFinished{state: state, err: err}}
}
