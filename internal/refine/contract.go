package refine

import (
	"encoding/json"
	"errors"
)

var errMissingRefinedPrompt = errors.New(`missing required field "refined_prompt"`)

// wireResponse mirrors Response but keeps refined_prompt as a pointer so a
// missing field can be told apart from an empty one.
type wireResponse struct {
	RefinedPrompt      *string  `json:"refined_prompt"`
	NeedsClarification bool     `json:"needs_clarification"`
	Questions          []string `json:"questions"`
}

// ParseResponse validates raw provider text against the response contract.
//
// Text that is not JSON, or JSON without refined_prompt, fails with a
// *ParseError. A present but empty refined_prompt fails with an
// *EmptyResultError. Both carry the raw text.
func ParseResponse(raw string) (*Response, error) {
	var w wireResponse
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if w.RefinedPrompt == nil {
		return nil, &ParseError{Raw: raw, Err: errMissingRefinedPrompt}
	}
	if *w.RefinedPrompt == "" {
		return nil, &EmptyResultError{Raw: raw}
	}

	questions := w.Questions
	if questions == nil {
		questions = []string{}
	}
	return &Response{
		RefinedPrompt:      *w.RefinedPrompt,
		NeedsClarification: w.NeedsClarification,
		Questions:          questions,
	}, nil
}
