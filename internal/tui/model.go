// Package tui is the interactive history browser behind
// "prep history browse".
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HexSleeves/prep/internal/history"
)

type viewMode int

const (
	viewList viewMode = iota
	viewDetail
)

// Model is the Bubble Tea model for the history browser.
type Model struct {
	entries []history.Entry

	// UI state
	width        int
	height       int
	cursor       int // selected entry in the list
	offset       int // first visible list row
	viewMode     viewMode
	detailScroll int // first visible detail line

	quitting bool
}

// New creates a browser over entries, which should be newest first.
func New(entries []history.Entry) Model {
	return Model{entries: entries, width: 80, height: 24}
}

func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Selected returns the entry under the cursor.
func (m Model) Selected() (history.Entry, bool) {
	if len(m.entries) == 0 {
		return history.Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.viewMode == viewDetail {
				if m.detailScroll > 0 {
					m.detailScroll--
				}
			} else if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.viewMode == viewDetail {
				if m.detailScroll < len(m.detailLines())-1 {
					m.detailScroll++
				}
			} else if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "g", "home":
			if m.viewMode == viewList {
				m.cursor = 0
			} else {
				m.detailScroll = 0
			}
		case "G", "end":
			if m.viewMode == viewList && len(m.entries) > 0 {
				m.cursor = len(m.entries) - 1
			}
		case "enter", "right", "l":
			if m.viewMode == viewList && len(m.entries) > 0 {
				m.viewMode = viewDetail
				m.detailScroll = 0
			}
		case "esc", "backspace", "left", "h":
			m.viewMode = viewList
		}
		m.clampOffset()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
	}

	return m, nil
}

// listRows is how many entries fit between the header and footer.
func (m Model) listRows() int {
	rows := m.height - 4
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) clampOffset() {
	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) detailLines() []string {
	e, ok := m.Selected()
	if !ok {
		return nil
	}
	var lines []string
	lines = append(lines, "Original prompt", "")
	lines = append(lines, wrap(e.Original, m.width-4)...)
	lines = append(lines, "", "Refined prompt", "")
	lines = append(lines, wrap(e.Refined, m.width-4)...)
	return lines
}

// wrap splits s into lines no wider than width cells, keeping paragraphs.
func wrap(s string, width int) []string {
	if width < 10 {
		width = 10
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if cellWidth(line)+1+cellWidth(w) > width {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return out
}
