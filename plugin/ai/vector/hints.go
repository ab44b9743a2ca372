// Package vector supplies embedding-based ordering hints for context
// pack building. The provider answers hint lookups with the stored
// cards closest to the prompt's topics, topped up with plain tag
// matches, so semantically related cards move to the front even when
// their tags never overlap the prompt's.
package vector

import (
	"context"
	"log/slog"
	"strings"

	"github.com/memwallet/memwallet/store"
)

// minSimilarity discards matches the embedding model considers
// unrelated. Scores are cosine similarity in [-1, 1].
const minSimilarity = 0.5

// Embedder turns the hint tags into a query vector.
type Embedder interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
	EmbeddingModel() string
}

// Searcher runs the similarity and tag-overlap lookups. *store.Store
// satisfies it on drivers with embedding support.
type Searcher interface {
	VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.CardWithScore, error)
	FindRelatedCardIDsByTags(ctx context.Context, tags []string, persona string, limit int) ([]string, error)
}

// HintProvider merges similarity hits with tag-overlap hits, closest
// cards first. Hints are supplementary, so a failing source degrades
// to whatever the other source returned.
type HintProvider struct {
	searcher Searcher
	embedder Embedder
}

func NewHintProvider(searcher Searcher, embedder Embedder) *HintProvider {
	return &HintProvider{
		searcher: searcher,
		embedder: embedder,
	}
}

// FindRelatedCardIDsByTags embeds the joined tags and returns the ids
// of the closest cards in similarity order, then fills any remaining
// room with tag-overlap matches.
func (p *HintProvider) FindRelatedCardIDsByTags(ctx context.Context, tags []string, persona string, limit int) ([]string, error) {
	if len(tags) == 0 || limit <= 0 {
		return nil, nil
	}

	ids := make([]string, 0, limit)
	seen := make(map[string]bool, limit)

	vector, err := p.embedder.Embedding(ctx, strings.Join(tags, " "))
	if err != nil {
		slog.Warn("hint embedding failed, using tag hints only", "error", err)
	} else {
		results, err := p.searcher.VectorSearch(ctx, &store.VectorSearchOptions{
			Vector:  vector,
			Persona: persona,
			Model:   p.embedder.EmbeddingModel(),
			Limit:   limit,
		})
		if err != nil {
			slog.Warn("similarity hint lookup failed, using tag hints only", "error", err)
		}
		for _, result := range results {
			if result.Score < minSimilarity || seen[result.Card.ID] {
				continue
			}
			seen[result.Card.ID] = true
			ids = append(ids, result.Card.ID)
		}
	}

	if len(ids) >= limit {
		return ids, nil
	}

	tagIDs, err := p.searcher.FindRelatedCardIDsByTags(ctx, tags, persona, limit)
	if err != nil {
		if len(ids) > 0 {
			slog.Warn("tag hint lookup failed, keeping similarity hints", "error", err)
			return ids, nil
		}
		return nil, err
	}
	for _, id := range tagIDs {
		if len(ids) >= limit {
			break
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
