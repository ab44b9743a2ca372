package analyzer

import (
	"context"
	"log/slog"
)

// Chain tries a primary analyzer and falls back on any failure. Its
// Analyze never returns a non-nil error, which is the contract the
// selection pipeline depends on: analysis degrades, it does not abort.
type Chain struct {
	primary  Analyzer
	fallback *FallbackAnalyzer
}

// NewChain builds the standard analysis chain. A nil primary means the
// fallback handles everything, which is how wallets without an API key run.
func NewChain(primary Analyzer) *Chain {
	return &Chain{
		primary:  primary,
		fallback: NewFallbackAnalyzer(),
	}
}

// Analyze returns the primary analysis when available, the keyword
// fallback otherwise. The returned error is always nil.
func (c *Chain) Analyze(ctx context.Context, prompt string) (*Analysis, error) {
	if c.primary != nil {
		analysis, err := c.primary.Analyze(ctx, prompt)
		if err == nil {
			return analysis, nil
		}
		slog.Warn("prompt analysis failed, using keyword fallback", slog.String("error", err.Error()))
	}
	analysis, _ := c.fallback.Analyze(ctx, prompt)
	return analysis, nil
}
