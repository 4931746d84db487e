// Package templates holds the built-in prompt templates. A template wraps
// the user's prompt in a fixed prefix and suffix before refinement.
package templates

import (
	"fmt"
	"sort"
)

type Template struct {
	Name        string
	Description string
	Prefix      string
	Suffix      string
}

// Apply wraps prompt in the template.
func (t Template) Apply(prompt string) string {
	return t.Prefix + prompt + t.Suffix
}

var builtins = map[string]Template{
	"code": {
		Name:        "code",
		Description: "Code generation requests",
		Prefix:      "[Code Generation Request]\n\n",
		Suffix:      "\n\nThe result should be clean, documented, production-ready code with proper error handling.",
	},
	"explain": {
		Name:        "explain",
		Description: "Explanations of a concept",
		Prefix:      "[Explanation Request]\n\n",
		Suffix:      "\n\nGive a clear, structured explanation aimed at someone learning the topic.",
	},
	"debug": {
		Name:        "debug",
		Description: "Debugging help",
		Prefix:      "[Debugging Request]\n\n",
		Suffix:      "\n\nFind the root cause and propose concrete fixes, explaining each one.",
	},
	"review": {
		Name:        "review",
		Description: "Code review",
		Prefix:      "[Code Review Request]\n\n",
		Suffix:      "\n\nReview for correctness, performance, security and readability.",
	},
	"docs": {
		Name:        "docs",
		Description: "Documentation writing",
		Prefix:      "[Documentation Request]\n\n",
		Suffix:      "\n\nWrite clear, complete documentation suited to the intended readers.",
	},
	"refactor": {
		Name:        "refactor",
		Description: "Refactoring existing code",
		Prefix:      "[Refactoring Request]\n\n",
		Suffix:      "\n\nImprove maintainability and readability without changing behavior.",
	},
	"test": {
		Name:        "test",
		Description: "Writing tests",
		Prefix:      "[Test Writing Request]\n\n",
		Suffix:      "\n\nCover the happy path, edge cases and error scenarios with clearly named tests.",
	},
	"api": {
		Name:        "api",
		Description: "API design",
		Prefix:      "[API Design Request]\n\n",
		Suffix:      "\n\nDesign a RESTful API with correct status codes, input validation and documentation.",
	},
	"security": {
		Name:        "security",
		Description: "Security analysis",
		Prefix:      "[Security Analysis Request]\n\n",
		Suffix:      "\n\nLook for vulnerabilities, including the OWASP Top 10, and give specific remediation steps.",
	},
	"architecture": {
		Name:        "architecture",
		Description: "Architecture design",
		Prefix:      "[Architecture Design Request]\n\n",
		Suffix:      "\n\nDesign for scalability, reliability and future extension.",
	},
}

// Get returns the named template.
func Get(name string) (Template, error) {
	t, ok := builtins[name]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q (see 'prep templates list')", name)
	}
	return t, nil
}

// List returns every template sorted by name.
func List() []Template {
	out := make([]Template, 0, len(builtins))
	for _, t := range builtins {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Apply wraps prompt in the named template.
func Apply(name, prompt string) (string, error) {
	t, err := Get(name)
	if err != nil {
		return "", err
	}
	return t.Apply(prompt), nil
}
