package refine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAnswerCountMismatch is returned when the number of answers does not
// match the number of questions asked.
var ErrAnswerCountMismatch = errors.New("answer count does not match question count")

// BuildUserMessage assembles the user turn sent to a provider.
//
// Context, when present, always comes first. A request carrying a
// clarification summary produces the second-round message that asks for
// the final prompt; otherwise the first-round refine instruction is used.
func BuildUserMessage(req Request) string {
	var b strings.Builder

	if req.HasContext() {
		b.WriteString("Context:\n")
		b.WriteString(req.Context)
		b.WriteString("\n\n")
	}

	if req.IsClarification() {
		b.WriteString("Original prompt:\n")
		b.WriteString(req.Prompt)
		b.WriteString("\n\nUser provided the following clarifications:\n")
		b.WriteString(req.Clarification)
		b.WriteString("\n\nPlease provide the final refined prompt based on this additional context.")
		return b.String()
	}

	b.WriteString("Please refine the following prompt:\n\n")
	b.WriteString(req.Prompt)
	return b.String()
}

// BuildClarificationSummary pairs each question with its answer by
// position, one "Q<n>: question → Answer: answer" line per pair.
func BuildClarificationSummary(questions, answers []string) (string, error) {
	if len(questions) != len(answers) {
		return "", fmt.Errorf("%w: %d questions, %d answers", ErrAnswerCountMismatch, len(questions), len(answers))
	}

	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "Q%d: %s → Answer: %s\n", i+1, q, answers[i])
	}
	return b.String(), nil
}
