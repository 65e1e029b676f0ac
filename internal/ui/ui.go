package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/batchalign/internal/formatter"
	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PairListView ViewState = iota
	ConfirmView
	RunView
	ResultView
)

// Runner executes a batch and reports progress on events.
//
// [tasks.BatchRunner] satisfies it.
type Runner interface {
	Run(ctx context.Context, items []models.WorkItem, events chan<- tasks.Event) (*models.RunState, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	runner     Runner
	items      []models.WorkItem
	warnings   []string
	width      int
	height     int
	pairList   list.Model
	events     chan tasks.Event
	done       chan runFinished
	cancel     context.CancelFunc
	cancelling bool
	current    tasks.Event
	results    []models.BatchResult
	state      *models.RunState
	err        error
	bar        progress.Model
	help       help.Model
	keys       keyMap
}

// NewModel creates a TUI model for the matched items.
//
// Warnings (unmatched files, duplicate identifiers) are shown above the list.
func NewModel(ctx context.Context, runner Runner, items []models.WorkItem, warnings []string) *Model {
	pairs := list.New(pairItems(items), list.NewDefaultDelegate(), 0, 0)
	pairs.Title = fmt.Sprintf("Matched pairs (%d)", len(items))

	return &Model{
		ctx:      ctx,
		view:     PairListView,
		runner:   runner,
		items:    items,
		warnings: warnings,
		pairList: pairs,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// ViewState returns the current view.
func (m *Model) ViewState() ViewState { return m.view }

// State returns the final run state once the run finished, nil before.
func (m *Model) State() *models.RunState { return m.state }

// Err returns the error reported by the runner, if any.
func (m *Model) Err() error { return m.err }

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.pairList.SetSize(msg.Width-4, msg.Height-8-len(m.warnings))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PairListView:
			return m.handlePairListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case RunView:
			return m.handleRunKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgRunEvent:
			e := msg.data.(tasks.Event)
			m.current = e
			if e.Phase == tasks.EventItemDone && e.Result != nil {
				m.results = append(m.results, *e.Result)
			}
			return m, waitForEvent(m.events, m.done)
		case MsgRunFinished:
			fin := msg.data.(runFinished)
			m.state = fin.state
			m.err = fin.err
			m.view = ResultView
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
			m.events = nil
			m.done = nil
			return m, nil
		}
	}

	if m.view == PairListView {
		var cmd tea.Cmd
		m.pairList, cmd = m.pairList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PairListView:
		return m.renderPairList()
	case ConfirmView:
		return m.renderConfirm()
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePairListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pairList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.pairList, cmd = m.pairList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if len(m.items) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.pairList, cmd = m.pairList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = RunView
		return m, m.startRun()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = PairListView
	}
	return m, nil
}

func (m *Model) handleRunKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) && m.cancel != nil && !m.cancelling {
		m.cancelling = true
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	return m, nil
}

// startRun launches the runner and returns the command that relays its events.
func (m *Model) startRun() tea.Cmd {
	runCtx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.cancelling = false
	m.results = nil
	m.events = make(chan tasks.Event)
	m.done = make(chan runFinished, 1)

	events, done, items := m.events, m.done, m.items
	go func() {
		state, err := m.runner.Run(runCtx, items, events)
		close(events)
		done <- runFinished{state: state, err: err}
	}()

	return waitForEvent(events, done)
}

func waitForEvent(events <-chan tasks.Event, done <-chan runFinished) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			fin := <-done
			return runFinishedMsg(fin.state, fin.err)
		}
		return runEventMsg(e)
	}
}

func (m *Model) renderPairList() string {
	var b strings.Builder
	for _, w := range m.warnings {
		b.WriteString(styles.warn.Render("⚠ "+w) + "\n")
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	fmt.Fprintf(&b, "%s\n\n%s", m.pairList.View(), m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Submit %d pairs for alignment?", len(m.items)))
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s", title, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderRun() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Aligning") + "\n")

	total := len(m.items)
	pct := 0.0
	if total > 0 {
		pct = float64(len(m.results)) / float64(total)
	}
	fmt.Fprintf(&b, "%s %d/%d\n\n", m.bar.ViewAs(pct), len(m.results), total)

	if m.current.Phase == tasks.EventItemStarted {
		fmt.Fprintf(&b, "→ %s\n", m.current.Name)
	}
	for _, r := range m.results {
		b.WriteString(styles.Outcome(r.Outcome).Render(resultLine(r)) + "\n")
	}

	if m.cancelling {
		b.WriteString("\n" + styles.warn.Render("Cancelling, remaining items will be skipped...") + "\n")
	} else {
		b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.cancel}))
	}
	return b.String()
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Run failed: %v\n\nPress q to quit", m.err))
	}
	if m.state == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	summary := formatter.Summarize(*m.state)
	title := styles.ok.Render("✓ Run " + string(m.state.Status))
	counts := fmt.Sprintf("Success: %d  Failure: %d  Skipped: %d",
		summary.Success, summary.Failure, summary.Skipped)

	return fmt.Sprintf("%s\n%s\n\n%s\n%s",
		title, counts, summary.DisplayText, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func resultLine(r models.BatchResult) string {
	switch {
	case r.Outcome.IsSuccess():
		return fmt.Sprintf("✅ %s", r.AudioName)
	case r.Outcome.IsSkipped():
		return fmt.Sprintf("⏭ %s: %s", r.AudioName, r.Outcome.Message)
	default:
		return fmt.Sprintf("❌ %s: %s", r.AudioName, r.Outcome.Message)
	}
}
