package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	headingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

func cellWidth(s string) int { return runewidth.StringWidth(s) }

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.viewMode == viewDetail {
		return m.detailView()
	}
	return m.listView()
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("prep history (%d)", len(m.entries))))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(metaStyle.Render("No history entries found."))
		b.WriteString("\n")
	}

	end := m.offset + m.listRows()
	if end > len(m.entries) {
		end = len(m.entries)
	}
	for i := m.offset; i < end; i++ {
		e := m.entries[i]
		meta := fmt.Sprintf("#%-5d %s  ", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"))
		avail := m.width - cellWidth(meta) - 2
		if avail < 10 {
			avail = 10
		}
		preview := runewidth.Truncate(strings.Join(strings.Fields(e.Original), " "), avail, "…")
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + meta + preview))
		} else {
			b.WriteString("  " + metaStyle.Render(meta) + preview)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/k ↓/j move • enter open • q quit"))
	return b.String()
}

func (m Model) detailView() string {
	e, ok := m.Selected()
	if !ok {
		return m.listView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("History entry #%d", e.ID)))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render(fmt.Sprintf("%s • %s • %s",
		e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Provider, e.Model)))
	b.WriteString("\n\n")

	lines := m.detailLines()
	rows := m.height - 5
	if rows < 1 {
		rows = 1
	}
	start := m.detailScroll
	if start > len(lines) {
		start = len(lines)
	}
	end := start + rows
	if end > len(lines) {
		end = len(lines)
	}
	for _, l := range lines[start:end] {
		if l == "Original prompt" || l == "Refined prompt" {
			l = headingStyle.Render(l)
		}
		b.WriteString("  " + l + "\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/k ↓/j scroll • esc back • q quit"))
	return b.String()
}
