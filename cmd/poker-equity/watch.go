package main

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// watchModel is a bubbletea model driven by equity.Run's onProgress hook:
// the orchestrator calls onProgress from its own goroutine as each hero
// hand finishes, and progressMsg relays that into the Bubble Tea update
// loop the usual tea.Program way.
type watchModel struct {
	prog      progress.Model
	totalHero int

	mu       sync.Mutex
	frac     float64
	snapshot map[string]float64
	done     bool

	program *tea.Program
}

type progressMsg struct {
	frac     float64
	snapshot map[string]float64
}

type doneMsg struct{}

func newWatchModel(totalHero int) *watchModel {
	return &watchModel{
		prog:      progress.New(progress.WithDefaultGradient()),
		totalHero: totalHero,
		snapshot:  make(map[string]float64),
	}
}

func (m *watchModel) Init() tea.Cmd {
	return nil
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.prog.Width = msg.Width - 4
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case progressMsg:
		m.frac = msg.frac
		m.snapshot = msg.snapshot
		return m, nil
	case doneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *watchModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("equity simulation")
	bar := m.prog.ViewAs(m.frac)

	names := make([]string, 0, len(m.snapshot))
	for name := range m.snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := []string{header, bar, ""}
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%-8s %6.2f%%", name, m.snapshot[name]*100))
	}
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

// onProgress is the callback handed to equity.Run. It is called from the
// orchestrator's goroutine, never the Bubble Tea event loop, so it pushes
// a message through the running tea.Program rather than mutating model
// state directly.
func (m *watchModel) onProgress(frac float64, snapshot map[string]float64) {
	m.mu.Lock()
	prog := m.program
	m.mu.Unlock()
	if prog == nil {
		return
	}
	prog.Send(progressMsg{frac: frac, snapshot: snapshot})
}

// run starts the Bubble Tea program and blocks until runDone closes,
// signalling the simulation finished, at which point the program is
// told to quit.
func (m *watchModel) run(runDone <-chan struct{}) {
	p := tea.NewProgram(m)

	m.mu.Lock()
	m.program = p
	m.mu.Unlock()

	go func() {
		<-runDone
		p.Send(doneMsg{})
	}()

	_, _ = p.Run()
}
