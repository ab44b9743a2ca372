package embedding

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/memwallet/memwallet/store"
)

type fakeSource struct {
	mu       sync.Mutex
	pending  []*store.Card
	findErr  error
	upserted []*store.CardEmbedding
}

func (f *fakeSource) FindCardsWithoutEmbedding(_ context.Context, find *store.FindCardsWithoutEmbedding) ([]*store.Card, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if find.Limit > 0 && len(f.pending) > find.Limit {
		return f.pending[:find.Limit], nil
	}
	return f.pending, nil
}

func (f *fakeSource) UpsertCardEmbedding(_ context.Context, embedding *store.CardEmbedding) (*store.CardEmbedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, embedding)
	return embedding, nil
}

type fakeEmbedder struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (f *fakeEmbedder) EmbeddingBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batches = append(f.batches, texts)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(len(texts[i]))}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbeddingModel() string {
	return "text-embedding-3-small"
}

func pendingCards(n int) []*store.Card {
	cards := make([]*store.Card, 0, n)
	for i := range n {
		cards = append(cards, &store.Card{
			ID:      fmt.Sprintf("card_%d", i),
			Type:    store.CardTypePreference,
			Text:    fmt.Sprintf("User PREFERS option %d", i),
			Persona: "Personal",
		})
	}
	return cards
}

func TestRunOnceEmbedsAllPendingCards(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{pending: pendingCards(3)}
	embedder := &fakeEmbedder{}

	NewRunner(source, embedder).RunOnce(ctx)

	require.Len(t, source.upserted, 3)
	seen := make(map[string]string)
	for _, e := range source.upserted {
		seen[e.CardID] = e.Model
		require.NotEmpty(t, e.Embedding)
	}
	require.Equal(t, "text-embedding-3-small", seen["card_0"])
	require.Contains(t, seen, "card_1")
	require.Contains(t, seen, "card_2")
}

func TestRunOnceSplitsIntoBatches(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{pending: pendingCards(20)}
	embedder := &fakeEmbedder{}

	NewRunner(source, embedder).RunOnce(ctx)

	require.Len(t, source.upserted, 20)
	require.Len(t, embedder.batches, 3)
	total := 0
	for _, batch := range embedder.batches {
		require.LessOrEqual(t, len(batch), defaultBatchSize)
		total += len(batch)
	}
	require.Equal(t, 20, total)
}

func TestRunOnceSkipsWhenNothingPending(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{}
	embedder := &fakeEmbedder{}

	NewRunner(source, embedder).RunOnce(ctx)

	require.Empty(t, embedder.batches)
	require.Empty(t, source.upserted)
}

func TestRunOnceToleratesFindFailure(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{findErr: errors.New("vector search is not supported in SQLite")}
	embedder := &fakeEmbedder{}

	NewRunner(source, embedder).RunOnce(ctx)

	require.Empty(t, embedder.batches)
}

func TestRunOnceToleratesEmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{pending: pendingCards(2)}
	embedder := &fakeEmbedder{err: errors.New("rate limited")}

	NewRunner(source, embedder).RunOnce(ctx)

	// Nothing recorded, so the next pass retries the same cards.
	require.Empty(t, source.upserted)
	require.NotEmpty(t, embedder.batches)
}
