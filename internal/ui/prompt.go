package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// StdinIsTerminal reports whether answers can be asked for.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// StderrIsTerminal reports whether a spinner can be drawn.
func StderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func fmtQuestion(i int, q string) string {
	return "  " + pterm.FgYellow.Sprint(fmt.Sprintf("Q%d:", i+1)) + " " + q
}

// Prompter asks clarification questions on the terminal.
type Prompter struct {
	ui *UI
	// ask reads one answer; replaced in tests.
	ask func(label string) (string, error)
}

func NewPrompter(u *UI) *Prompter {
	return &Prompter{
		ui: u,
		ask: func(label string) (string, error) {
			return pterm.DefaultInteractiveTextInput.Show(label)
		},
	}
}

// NewLinePrompter reads one answer per line from r.
func NewLinePrompter(u *UI, r io.Reader) *Prompter {
	sc := bufio.NewScanner(r)
	return &Prompter{
		ui: u,
		ask: func(label string) (string, error) {
			fmt.Fprintf(u.errOut, "%s: ", label)
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return "", err
				}
				return "", io.ErrUnexpectedEOF
			}
			return sc.Text(), nil
		},
	}
}

// Ask returns one answer per question, in order.
func (p *Prompter) Ask(ctx context.Context, questions []string) ([]string, error) {
	p.ui.Header("Clarification Needed")
	answers := make([]string, 0, len(questions))
	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.ui.println("")
		p.ui.println(fmtQuestion(i, q))
		a, err := p.ask(fmt.Sprintf("A%d", i+1))
		if err != nil {
			return nil, fmt.Errorf("read answer %d: %w", i+1, err)
		}
		answers = append(answers, strings.TrimSpace(a))
	}
	p.ui.println("")
	return answers, nil
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(question string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(question)
}

// ReadLine prompts with label and returns one trimmed line from r.
func (u *UI) ReadLine(r io.Reader, label string) (string, error) {
	fmt.Fprint(u.errOut, label)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
