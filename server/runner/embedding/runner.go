// Package embedding backfills vector embeddings for stored cards in the
// background. Card writes never wait on it; a card without a vector is
// simply invisible to similarity search until the next pass.
package embedding

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/memwallet/memwallet/store"
)

const (
	defaultInterval  = 2 * time.Minute
	defaultBatchSize = 8

	// maxConcurrentBatches bounds in-flight provider calls so a large
	// backfill cannot exhaust the API quota.
	maxConcurrentBatches = 2
)

// CardSource lists cards lacking vectors and records computed ones.
// *store.Store satisfies it.
type CardSource interface {
	FindCardsWithoutEmbedding(ctx context.Context, find *store.FindCardsWithoutEmbedding) ([]*store.Card, error)
	UpsertCardEmbedding(ctx context.Context, embedding *store.CardEmbedding) (*store.CardEmbedding, error)
}

// Embedder computes embedding vectors. *ai.Provider satisfies it.
type Embedder interface {
	EmbeddingBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbeddingModel() string
}

// Runner finds cards without embeddings and embeds them in batches.
type Runner struct {
	source   CardSource
	embedder Embedder

	interval  time.Duration
	batchSize int
	sem       *semaphore.Weighted
}

func NewRunner(source CardSource, embedder Embedder) *Runner {
	return &Runner{
		source:    source,
		embedder:  embedder,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		sem:       semaphore.NewWeighted(maxConcurrentBatches),
	}
}

// Run processes pending cards once at startup and then on every tick
// until the context ends.
func (r *Runner) Run(ctx context.Context) {
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("embedding runner stopped")
			return
		}
	}
}

// RunOnce embeds the cards currently lacking a vector. Batches run
// concurrently under the semaphore; a failed batch is retried on the
// next pass because its cards still have no embedding row.
func (r *Runner) RunOnce(ctx context.Context) {
	cards, err := r.source.FindCardsWithoutEmbedding(ctx, &store.FindCardsWithoutEmbedding{
		Model: r.embedder.EmbeddingModel(),
		Limit: r.batchSize * 20,
	})
	if err != nil {
		slog.Error("failed to find cards without embedding", "error", err)
		return
	}
	if len(cards) == 0 {
		return
	}
	slog.Info("embedding cards", "count", len(cards))

	var wg sync.WaitGroup
	for start := 0; start < len(cards); start += r.batchSize {
		batch := cards[start:min(start+r.batchSize, len(cards))]
		if err := r.sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer r.sem.Release(1)
			if err := r.embedBatch(ctx, batch); err != nil {
				slog.Error("embedding batch failed", "count", len(batch), "error", err)
			}
		}()
	}
	wg.Wait()
}

func (r *Runner) embedBatch(ctx context.Context, batch []*store.Card) error {
	texts := make([]string, len(batch))
	for i, card := range batch {
		texts[i] = card.Text
	}
	vectors, err := r.embedder.EmbeddingBatch(ctx, texts)
	if err != nil {
		return err
	}

	model := r.embedder.EmbeddingModel()
	for i, card := range batch {
		if i >= len(vectors) {
			break
		}
		if _, err := r.source.UpsertCardEmbedding(ctx, &store.CardEmbedding{
			CardID:    card.ID,
			Embedding: vectors[i],
			Model:     model,
		}); err != nil {
			slog.Error("failed to upsert card embedding", "card_id", card.ID, "error", err)
		}
	}
	return nil
}
