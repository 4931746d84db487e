// Package refine holds the backend-agnostic pieces of prompt refinement:
// the request and response types, the user message builder, the response
// contract every provider must satisfy, and the shared error taxonomy.
package refine

// Request is one refinement call. Empty Context or Clarification means the
// part is absent.
type Request struct {
	Prompt        string
	Context       string
	Clarification string
}

// HasContext reports whether the request carries file context.
func (r Request) HasContext() bool { return r.Context != "" }

// IsClarification reports whether this is the second, clarified round.
func (r Request) IsClarification() bool { return r.Clarification != "" }

// Response is the structured output every provider returns.
type Response struct {
	RefinedPrompt      string   `json:"refined_prompt"`
	NeedsClarification bool     `json:"needs_clarification"`
	Questions          []string `json:"questions"`
}

// WantsClarification reports whether the response asks the user something.
// A false flag with leftover questions counts as already answered.
func (r *Response) WantsClarification() bool {
	return r.NeedsClarification && len(r.Questions) > 0
}

// SystemPrompt is the refiner persona and output contract shared by all
// providers.
const SystemPrompt = `You are a prompt refinement specialist. You take casual, loosely worded prompts and rewrite them into precise, well-structured instructions that another AI assistant can act on directly.

RULES:
1. You only refine prompts. Never write code, perform the task, or answer the user's question yourself.
2. Always reply with a single JSON object of exactly this shape:
   {
     "refined_prompt": "string",
     "needs_clarification": boolean,
     "questions": ["string", ...]
   }
3. "refined_prompt" holds one clear, explicit instruction aimed at another AI assistant.
4. Set "needs_clarification" to true only when essential information is missing and cannot reasonably be inferred.
5. "questions" lists the fewest short, specific questions needed to close those gaps. Leave it empty when "needs_clarification" is false.
6. Do not include code, implementations or solutions.

When refining:
- State the goal and the expected output format
- Spell out constraints, requirements and preferences
- Add the context an assistant needs to understand the task
- Remove ambiguity
- Keep the user's original intent

Reply with the JSON object and nothing else.`

// StrictJSONSuffix is appended to the system prompt for providers that
// have no native JSON output mode.
const StrictJSONSuffix = "\n\nIMPORTANT: Respond with ONLY a valid JSON object. No markdown code blocks, no explanation, just the raw JSON."
