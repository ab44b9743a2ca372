// Package analyzer turns a draft prompt into the structured analysis that
// drives card selection: which domains the prompt touches, what the user
// wants, and any preferences stated outright in the prompt itself.
package analyzer

import "context"

// Analysis is the structured reading of a draft prompt.
type Analysis struct {
	// Intent is a short description of what the user wants.
	Intent string `json:"intent"`
	// Domains name the life areas the prompt touches, lowercase.
	Domains []string `json:"domains"`
	// ExplicitPreferences are preferences stated in the prompt itself.
	// They override stored memory during arbitration.
	ExplicitPreferences []string `json:"explicit_preferences"`
	// Keywords are salient terms from the prompt, lowercase.
	Keywords []string `json:"keywords"`
}

// Analyzer derives an Analysis from raw prompt text.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (*Analysis, error)
}

// ChatClient is the LLM surface the analyzer needs: one JSON-constrained
// completion per prompt.
type ChatClient interface {
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}
