package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/HexSleeves/prep/internal/bus"
	"github.com/HexSleeves/prep/internal/refine"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(&out, &errOut, false, false), &out, &errOut
}

// ---------------------------------------------------------------------------
// Output formats
// ---------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatText,
		"text":     FormatText,
		"JSON":     FormatJSON,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q)=%q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}

func TestRenderText(t *testing.T) {
	var b bytes.Buffer
	if err := Render(&b, FormatText, &refine.Response{RefinedPrompt: "Do X"}); err != nil {
		t.Fatal(err)
	}
	if b.String() != "Do X\n" {
		t.Errorf("got %q", b.String())
	}
}

func TestRenderJSON(t *testing.T) {
	var b bytes.Buffer
	if err := Render(&b, FormatJSON, &refine.Response{RefinedPrompt: "Do X"}); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(b.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, b.String())
	}
	if got["refined_prompt"] != "Do X" || got["needs_clarification"] != false {
		t.Errorf("got %v", got)
	}
	if qs, ok := got["questions"].([]any); !ok || len(qs) != 0 {
		t.Errorf("questions=%v, want []", got["questions"])
	}
	if !strings.Contains(b.String(), "\n  \"refined_prompt\"") {
		t.Error("json output should be indented")
	}
}

func TestRenderMarkdown(t *testing.T) {
	var b bytes.Buffer
	resp := &refine.Response{RefinedPrompt: "Do X", NeedsClarification: true, Questions: []string{"Which X?", "When?"}}
	if err := Render(&b, FormatMarkdown, resp); err != nil {
		t.Fatal(err)
	}
	want := "## Refined Prompt\n\nDo X\n\n### Clarification Questions\n\n1. Which X?\n2. When?\n"
	if b.String() != want {
		t.Errorf("got %q\nwant %q", b.String(), want)
	}

	b.Reset()
	resp = &refine.Response{RefinedPrompt: "Do X", Questions: []string{"answered already"}}
	if err := Render(&b, FormatMarkdown, resp); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(b.String(), "Clarification") {
		t.Error("questions section should only appear when clarification is pending")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 20, "short"},
		{"line one\n\n  line two", 40, "line one line two"},
		{"abcdefghij", 5, "abcd…"},
		{"日本語のテキスト", 7, "日本語…"},
	}
	for _, tt := range tests {
		if got := Preview(tt.in, tt.width); got != tt.want {
			t.Errorf("Preview(%q, %d)=%q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Printers and bus events
// ---------------------------------------------------------------------------

func TestPrintersWriteToStderr(t *testing.T) {
	u, out, errOut := newTestUI()
	u.Success("saved %d", 3)
	u.Warning("careful")
	u.KV("Model", "gpt-4o")
	u.Boxed("Refined Prompt", "Do X")

	if out.Len() != 0 {
		t.Errorf("stdout should stay clean, got %q", out.String())
	}
	for _, want := range []string{"saved 3", "careful", "Model:", "gpt-4o", "Refined Prompt", "Do X"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut.String())
		}
	}
}

func TestAttach(t *testing.T) {
	u, _, errOut := newTestUI()
	b := bus.New(10)
	detach := u.Attach(b)

	b.Publish(bus.Message{Type: bus.MsgRefineStarted, Provider: "OpenAI", Payload: bus.RefineStarted{Model: "gpt-4o"}})
	b.Publish(bus.Message{Type: bus.MsgClarificationSkipped, Payload: bus.ClarificationRequested{Questions: []string{"Which stack?"}}})
	b.Publish(bus.Message{Type: bus.MsgHistoryError, Payload: bus.HistoryError{Err: errors.New("disk full")}})

	got := errOut.String()
	for _, want := range []string{"Refining prompt with OpenAI (gpt-4o)", "non-interactively", "Q1:", "Which stack?", "disk full"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	detach()
	errOut.Reset()
	b.Publish(bus.Message{Type: bus.MsgHistoryError, Payload: bus.HistoryError{Err: errors.New("again")}})
	if errOut.Len() != 0 {
		t.Errorf("detached UI still printing: %q", errOut.String())
	}
}

func TestLinePrompter(t *testing.T) {
	u, _, errOut := newTestUI()
	p := NewLinePrompter(u, strings.NewReader("React\n  next Friday  \n"))

	answers, err := p.Ask(context.Background(), []string{"Framework?", "Deadline?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(answers) != 2 || answers[0] != "React" || answers[1] != "next Friday" {
		t.Errorf("answers=%q", answers)
	}
	if !strings.Contains(errOut.String(), "Framework?") || !strings.Contains(errOut.String(), "A2") {
		t.Errorf("questions not shown:\n%s", errOut.String())
	}
}

func TestLinePrompter_EOF(t *testing.T) {
	u, _, _ := newTestUI()
	p := NewLinePrompter(u, strings.NewReader("only one\n"))
	if _, err := p.Ask(context.Background(), []string{"a?", "b?"}); err == nil {
		t.Error("expected error when input ends early")
	}
}

func TestReadLine(t *testing.T) {
	u, _, _ := newTestUI()
	got, err := u.ReadLine(strings.NewReader("  write tests \n"), "> ")
	if err != nil || got != "write tests" {
		t.Errorf("got %q, %v", got, err)
	}
}
