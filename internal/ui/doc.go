// Package ui implements an interactive terminal interface for batch runs using bubbletea's Elm architecture.
//
// The TUI walks through one batch:
//  1. [PairListView] : Browse the matched audio/transcript pairs
//  2. [ConfirmView] : Confirm the submission
//  3. [RunView] : Progress bar and the current item while the runner works
//  4. [ResultView] : Counts and the per-item result lines
//
// Runner events flow through a channel into the (view) [Model] as messages, so
// every item's start and completion is rendered in order. Pressing ctrl+c during
// a run cancels it; the remaining items are reported as skipped.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
