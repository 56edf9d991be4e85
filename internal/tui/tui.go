// Package tui provides an interactive picker over the recent-timer
// suggestion list.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"timeat/recents"
)

// Suggester is the subset of the cache the picker needs
type Suggester interface {
	Search(ctx context.Context, query string, limit int) ([]recents.Entry, recents.Outcome)
	IncrementUsage(ctx context.Context, description string, projectID *int64, tagIDs []int64) recents.Outcome
}

// Model represents the picker state
type Model struct {
	suggester Suggester
	ctx       context.Context
	limit     int

	textInput textinput.Model
	entries   []recents.Entry
	cursor    int
	selection *recents.Entry

	width  int
	height int

	selectedStyle lipgloss.Style
	usageStyle    lipgloss.Style
	helpStyle     lipgloss.Style
}

// New creates a new picker model
func New(s Suggester, limit int) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 128
	ti.Focus()

	return &Model{
		suggester: s,
		ctx:       context.Background(),
		limit:     limit,
		textInput: ti,
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		usageStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}

// Selection returns the entry chosen with enter, or nil if the picker was
// dismissed.
func (m *Model) Selection() *recents.Entry {
	return m.selection
}

// Init initializes the picker
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return textinput.Blink
}

func (m *Model) refresh() {
	m.entries, _ = m.suggester.Search(m.ctx, m.textInput.Value(), m.limit)
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case tea.KeyDown:
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
			return m, nil

		case tea.KeyEnter:
			if m.cursor < len(m.entries) {
				chosen := m.entries[m.cursor]
				m.selection = &chosen
				m.suggester.IncrementUsage(m.ctx, chosen.Description, chosen.ProjectID, chosen.TagIDs)
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	before := m.textInput.Value()
	m.textInput, cmd = m.textInput.Update(msg)
	if m.textInput.Value() != before {
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

// View renders the picker
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(m.usageStyle.Render("no matching timers"))
		b.WriteString("\n")
	}

	for i, e := range m.entries {
		line := formatEntry(e)
		if i == m.cursor {
			line = m.selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString(m.usageStyle.Render(fmt.Sprintf("  (used %d)", e.UsageCount)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.helpStyle.Render("enter: start  ↑/↓: move  esc: cancel"))
	return b.String()
}

func formatEntry(e recents.Entry) string {
	parts := []string{e.Description}
	if e.ProjectID != nil {
		parts = append(parts, "@"+strconv.FormatInt(*e.ProjectID, 10))
	}
	for _, id := range e.TagIDs {
		parts = append(parts, "#"+strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, " ")
}
