package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Geinome/dsharp/internal/backend"
)

type progressModel struct {
	title   string
	events  <-chan backend.Event
	spinner spinner.Model
	prog    progress.Model
	items   []unitItem
	index   map[string]int
	width   int
	done    bool
}

type unitItem struct {
	unit   string
	status string
	stage  backend.Stage
}

type eventMsg backend.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders backend progress
// for a set of compilation units.
func NewProgressModel(title string, units []string, events <-chan backend.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]unitItem, 0, len(units))
	index := make(map[string]int, len(units))
	for i, unit := range units {
		items = append(items, unitItem{unit: unit, status: "queued"})
		index[unit] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(backend.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progModel, cmd := m.prog.Update(msg)
		m.prog = progModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.unit, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s", statusStyled, name))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev backend.Event) tea.Cmd {
	if ev.Unit == "" {
		return nil
	}
	idx, ok := m.index[ev.Unit]
	if !ok {
		return nil
	}
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		m.items[idx].status = label
		m.items[idx].stage = ev.Stage
	}

	totalProgress := 0.0
	for _, item := range m.items {
		if item.status == "done" || item.status == "error" {
			totalProgress += 1.0
		} else {
			totalProgress += progressFromStage(item.stage)
		}
	}
	return m.prog.SetPercent(totalProgress / float64(len(m.items)))
}

func progressFromStage(stage backend.Stage) float64 {
	switch stage {
	case backend.StageOrder:
		return 0.1
	case backend.StageRename:
		return 0.3
	case backend.StageAssemble:
		return 0.6
	case backend.StagePackage:
		return 0.8
	case backend.StageWrite:
		return 0.95
	default:
		return 0.0
	}
}

func statusLabel(stage backend.Stage, status backend.Status) string {
	switch status {
	case backend.StatusQueued:
		return "queued"
	case backend.StatusError:
		return "error"
	case backend.StatusDone:
		if stage == backend.StageWrite {
			return "done"
		}
		return ""
	case backend.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage backend.Stage) string {
	switch stage {
	case backend.StageOrder:
		return "ordering"
	case backend.StageRename:
		return "renaming"
	case backend.StageAssemble:
		return "assembling"
	case backend.StagePackage:
		return "packaging"
	case backend.StageWrite:
		return "writing"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "ordering", "renaming", "assembling", "packaging", "writing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
