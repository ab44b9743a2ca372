package analyzer

import "context"

// MockAnalyzer returns a scripted analysis, or a scripted error, for
// testing pipelines without a model.
type MockAnalyzer struct {
	Result *Analysis
	Err    error
	// Calls records every prompt passed to Analyze.
	Calls []string
}

// Analyze returns the scripted result.
func (m *MockAnalyzer) Analyze(_ context.Context, prompt string) (*Analysis, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
