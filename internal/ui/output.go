package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/HexSleeves/prep/internal/refine"
)

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or markdown)", s)
}

// Render writes the final response to w in format f.
func Render(w io.Writer, f Format, resp *refine.Response) error {
	switch f {
	case FormatJSON:
		out := *resp
		if out.Questions == nil {
			out.Questions = []string{}
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err

	case FormatMarkdown:
		var b strings.Builder
		b.WriteString("## Refined Prompt\n\n")
		b.WriteString(resp.RefinedPrompt)
		b.WriteString("\n")
		if resp.WantsClarification() {
			b.WriteString("\n### Clarification Questions\n\n")
			for i, q := range resp.Questions {
				fmt.Fprintf(&b, "%d. %s\n", i+1, q)
			}
		}
		_, err := io.WriteString(w, b.String())
		return err

	default:
		_, err := fmt.Fprintln(w, resp.RefinedPrompt)
		return err
	}
}

// Preview flattens s to one line and truncates it to width cells.
func Preview(s string, width int) string {
	flat := strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(flat, width, "…")
}
