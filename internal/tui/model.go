// Package tui provides the Bubble Tea duel interface.
//
// The UI is a passive scoreboard: it renders snapshots published by the
// session loop and never evaluates input itself. Player keyboards are
// grabbed for the session, so the only keys arriving through the terminal
// come from a keyboard that is not part of the duel.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typeduel/internal/keyboard"
	"github.com/verte-zerg/typeduel/internal/level"
	"github.com/verte-zerg/typeduel/internal/model"
	"github.com/verte-zerg/typeduel/internal/session"
	statsPkg "github.com/verte-zerg/typeduel/internal/stats"
)

// NoteMsg wraps one session snapshot for the Bubble Tea loop.
type NoteMsg session.Notification

// DoneMsg reports that the session loop exited and the UI should close.
type DoneMsg struct{}

const (
	paneGap        = 2
	minPaneContent = 24
	backupWidth    = 80
)

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	missStyle      = incorrectStyle.Copy().Underline(true)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	claimedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pausedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	paneStyle      = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Model implements the Bubble Tea duel UI.
type Model struct {
	cfg    model.Config
	levels []level.Level

	width  int
	height int

	state   session.State
	players []session.PlayerView
	devices []keyboard.Device
	bound   []session.BoundDevice
	record  *model.SessionRecord
}

// NewModel constructs the duel UI over a fixed level sequence.
func NewModel(cfg model.Config, levels []level.Level) *Model {
	return &Model{cfg: cfg, levels: levels}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case NoteMsg:
		m.state = msg.State
		m.players = msg.Players
		m.devices = msg.Devices
		m.bound = msg.Bound
		if msg.Record != nil {
			m.record = msg.Record
		}
		return m, nil
	case DoneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.state {
	case session.Setup:
		content = m.viewSetup()
	case session.Complete:
		content = m.viewComplete()
	default:
		content = m.viewPlay()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewSetup() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("typeduel"))
	b.WriteString("\n\n")
	remaining := m.cfg.Players - len(m.bound)
	if remaining == 1 {
		b.WriteString("Press any key to claim a slot. Waiting for 1 more player.\n\n")
	} else {
		b.WriteString(fmt.Sprintf("Press any key to claim a slot. Waiting for %d more players.\n\n", remaining))
	}
	claimed := make(map[keyboard.DeviceID]model.Slot, len(m.bound))
	for _, bd := range m.bound {
		claimed[bd.Device] = bd.Slot
	}
	for _, d := range m.devices {
		name := d.Name
		if name == "" {
			name = d.Path
		}
		if slot, ok := claimed[d.ID]; ok {
			b.WriteString(fmt.Sprintf("  %s  %s\n", correctStyle.Render(name), claimedStyle.Render("["+slot.String()+"]")))
		} else {
			b.WriteString(fmt.Sprintf("  %s\n", pendingStyle.Render(name)))
		}
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("esc cancels"))
	return b.String()
}

func (m *Model) viewPlay() string {
	width := m.paneContentWidth()
	panes := make([]string, 0, len(m.players))
	for _, p := range m.players {
		panes = append(panes, m.renderPane(p, width))
	}
	header := titleStyle.Render("typeduel") + footerStyle.Render(fmt.Sprintf("  %s · %s", m.cfg.Mode, m.cfg.Lang))
	return strings.Join([]string{header, "", joinPanes(panes), "", m.renderFooter()}, "\n")
}

func (m *Model) viewComplete() string {
	if m.record == nil {
		return titleStyle.Render("Session ended.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Session complete"))
	b.WriteString("\n\n")
	for _, p := range m.record.Players {
		wpm := statsPkg.WPM(m.record.Mode, p.Correct, p.UnitsDone, p.DurationMs)
		_, _, acc := statsPkg.SessionMetrics(p.Correct, p.Incorrect, p.DurationMs)
		b.WriteString(fmt.Sprintf("%s  WPM %.1f · Acc %.1f%% · %d units\n", p.Slot, wpm, acc*100, p.UnitsDone))
	}
	if slot, ok := statsPkg.Winner(m.record.Players); ok {
		b.WriteString("\n")
		b.WriteString(claimedStyle.Render(fmt.Sprintf("Winner: %s", slot)))
	}
	return b.String()
}

func (m *Model) renderPane(p session.PlayerView, width int) string {
	title := titleStyle.Render(p.Slot.String())
	head := footerStyle.Render(fmt.Sprintf("Level %d/%d: %s", p.LevelIndex+1, len(m.levels), p.LevelName))
	var body string
	switch {
	case p.Done:
		body = claimedStyle.Render("Finished!") + "\n" + pendingStyle.Render("Waiting for the other player.")
	default:
		body = renderStrip(m.levelUnits(p.LevelIndex), p.UnitIndex, p.Buffer, p.Last, width)
		if m.cfg.Mode == model.ModeWords {
			body += "\n" + renderBufferLine(p.Buffer)
		}
	}
	counts := footerStyle.Render(fmt.Sprintf("WPM %.1f · Acc %.1f%% · %d/%d", p.WPM, p.Accuracy*100, p.Completed, p.Total))
	content := strings.Join([]string{title, head, "", body, "", counts}, "\n")
	return paneStyle.Width(width + paneStyle.GetHorizontalPadding()).Render(content)
}

func (m *Model) renderFooter() string {
	if m.state == session.Paused {
		return pausedStyle.Render("PAUSED") + footerStyle.Render(" · esc resumes · ctrl+c stops")
	}
	return footerStyle.Render("esc pauses · ctrl+c stops")
}

// paneContentWidth returns the text width available inside one pane.
func (m *Model) paneContentWidth() int {
	n := len(m.players)
	if n == 0 {
		n = m.cfg.Players
	}
	if n < 1 {
		n = 1
	}
	total := m.width
	if total <= 0 {
		total = backupWidth
	}
	frame := paneStyle.GetHorizontalFrameSize()
	w := (total-(n-1)*paneGap)/n - frame
	if w < minPaneContent {
		w = minPaneContent
	}
	return w
}

func (m *Model) levelUnits(idx int) []string {
	if idx < 0 || idx >= len(m.levels) {
		return nil
	}
	return m.levels[idx].Units
}

func joinPanes(panes []string) string {
	if len(panes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(panes)*2-1)
	for i, p := range panes {
		if i > 0 {
			parts = append(parts, strings.Repeat(" ", paneGap))
		}
		parts = append(parts, p)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
