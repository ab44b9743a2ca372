package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/memwallet/memwallet/store"
)

// defaultNodeLimit caps graph size when the caller does not.
const defaultNodeLimit = 100

// Builder constructs card graphs from the wallet.
type Builder struct {
	store *store.Store
}

func NewBuilder(s *store.Store) *Builder {
	return &Builder{store: s}
}

// Build returns the shared-tag graph for a persona. Cards are nodes;
// two cards are connected once when any tag overlaps, labeled with the
// first overlapping tag in the later card's tag order.
func (b *Builder) Build(ctx context.Context, persona string, limit int) (*Graph, error) {
	start := time.Now()
	if limit <= 0 {
		limit = defaultNodeLimit
	}

	cards, err := b.store.ListCards(ctx, &store.FindCard{Persona: &persona})
	if err != nil {
		return nil, errors.Wrap(err, "list cards")
	}
	if len(cards) > limit {
		cards = cards[:limit]
	}

	graph := &Graph{Nodes: []Node{}, Edges: []Edge{}}
	tagToCards := make(map[string][]string)
	seenPairs := make(map[[2]string]bool)

	for _, card := range cards {
		graph.Nodes = append(graph.Nodes, Node{
			ID:       card.ID,
			Label:    truncateLabel(card.Text),
			Type:     string(card.Type),
			Domains:  card.Domains,
			Tags:     card.Tags,
			FullText: card.Text,
		})

		for _, tag := range card.Tags {
			for _, otherID := range tagToCards[tag] {
				pair := orderPair(otherID, card.ID)
				if seenPairs[pair] {
					continue
				}
				seenPairs[pair] = true
				graph.Edges = append(graph.Edges, Edge{
					Source:    otherID,
					Target:    card.ID,
					Type:      EdgeTypeSharedTag,
					SharedTag: tag,
				})
			}
			tagToCards[tag] = append(tagToCards[tag], card.ID)
		}
	}

	graph.Stats = Stats{
		NodeCount: len(graph.Nodes),
		EdgeCount: len(graph.Edges),
		TagCount:  len(tagToCards),
	}
	graph.BuildMs = time.Since(start).Milliseconds()

	slog.Debug("built card graph",
		slog.String("persona", persona),
		slog.Int("nodes", graph.Stats.NodeCount),
		slog.Int("edges", graph.Stats.EdgeCount))
	return graph, nil
}

func truncateLabel(text string) string {
	if len(text) <= labelLength {
		return text
	}
	return text[:labelLength] + "..."
}

func orderPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
