// Package ui renders everything prep shows on the terminal except the
// refined prompt itself: status lines, spinners, boxes, tables and the
// interactive questions.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

// UI writes diagnostics to errOut so stdout stays clean for piping.
type UI struct {
	out     io.Writer
	errOut  io.Writer
	spinner bool

	mu   sync.Mutex
	spin *pterm.SpinnerPrinter
}

// New builds a UI. Colors are process-wide in pterm, so color=false
// disables them globally.
func New(out, errOut io.Writer, color, spinner bool) *UI {
	if color {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
	return &UI{out: out, errOut: errOut, spinner: spinner}
}

func (u *UI) Out() io.Writer { return u.out }

func (u *UI) println(s string) {
	fmt.Fprintln(u.errOut, strings.TrimRight(s, "\n"))
}

func (u *UI) Success(format string, a ...any) {
	u.println(pterm.Success.Sprint(fmt.Sprintf(format, a...)))
}

func (u *UI) Error(format string, a ...any) {
	u.println(pterm.Error.Sprint(fmt.Sprintf(format, a...)))
}

func (u *UI) Warning(format string, a ...any) {
	u.println(pterm.Warning.Sprint(fmt.Sprintf(format, a...)))
}

func (u *UI) Info(format string, a ...any) {
	u.println(pterm.Info.Sprint(fmt.Sprintf(format, a...)))
}

// Status prints a dim progress line; used when the spinner is off.
func (u *UI) Status(format string, a ...any) {
	u.println(pterm.FgGray.Sprint("→ " + fmt.Sprintf(format, a...)))
}

func (u *UI) Header(title string) {
	u.println("\n" + pterm.Bold.Sprint(pterm.FgLightCyan.Sprint(title)))
	u.println(pterm.FgGray.Sprint(strings.Repeat("─", len([]rune(title)))))
}

// KV prints an indented "key: value" line.
func (u *UI) KV(key, value string) {
	u.println("  " + pterm.FgGray.Sprint(key+":") + " " + value)
}

// Boxed prints content in a titled box.
func (u *UI) Boxed(title, content string) {
	box := pterm.DefaultBox
	if title != "" {
		box = *box.WithTitle(pterm.FgLightCyan.Sprint(title))
	}
	u.println(box.Sprint(content))
}

// ListItem prints a bulleted line.
func (u *UI) ListItem(content string) {
	u.println("  " + pterm.FgCyan.Sprint("•") + " " + content)
}

// Table renders rows with the first row as header.
func (u *UI) Table(rows [][]string) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	u.println(s)
	return nil
}

// StartSpinner shows a spinner, or a status line when spinners are off.
func (u *UI) StartSpinner(text string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.spinner {
		u.Status("%s", text)
		return
	}
	if u.spin != nil {
		u.spin.UpdateText(text)
		return
	}
	s, err := pterm.DefaultSpinner.WithWriter(u.errOut).WithRemoveWhenDone(true).Start(text)
	if err != nil {
		u.Status("%s", text)
		return
	}
	u.spin = s
}

// StopSpinner clears any running spinner.
func (u *UI) StopSpinner() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.spin == nil {
		return
	}
	_ = u.spin.Stop()
	u.spin = nil
}
