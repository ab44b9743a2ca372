package extraction

import "context"

// MockExtractor returns scripted items, or a scripted error, for
// testing ingestion without a model.
type MockExtractor struct {
	Items []Item
	Err   error
	// Calls records every conversation passed to Extract.
	Calls []string
}

func (m *MockExtractor) Extract(_ context.Context, conversation string) ([]Item, error) {
	m.Calls = append(m.Calls, conversation)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Items, nil
}
