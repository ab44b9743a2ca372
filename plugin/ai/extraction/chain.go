package extraction

import (
	"context"
	"log/slog"
)

// Chain tries the distiller and falls back to keyword scanning on any
// failure. Like the analyzer chain, its Extract never returns an
// error: ingestion degrades, it does not abort.
type Chain struct {
	primary  Extractor
	fallback *KeywordExtractor
}

// NewChain builds the standard extraction chain. A nil primary means
// keyword scanning handles everything.
func NewChain(primary Extractor) *Chain {
	return &Chain{
		primary:  primary,
		fallback: NewKeywordExtractor(),
	}
}

func (c *Chain) Extract(ctx context.Context, conversation string) ([]Item, error) {
	if c.primary != nil {
		items, err := c.primary.Extract(ctx, conversation)
		if err == nil {
			return items, nil
		}
		slog.Warn("tuple distillation failed, using keyword extraction", slog.String("error", err.Error()))
	}
	items, _ := c.fallback.Extract(ctx, conversation)
	return items, nil
}
