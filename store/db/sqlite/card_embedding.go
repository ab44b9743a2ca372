package sqlite

import (
	"context"
	"errors"

	"github.com/memwallet/memwallet/store"
)

// Vector search needs the pgvector extension, so SQLite wallets do not
// store embeddings at all. Retrieval falls back to tag overlap, which the
// selection pipeline already treats as an optional signal.

var errVectorSearchNotSupported = errors.New("vector search is not supported in SQLite; please use PostgreSQL with pgvector")

func (d *DB) UpsertCardEmbedding(ctx context.Context, embedding *store.CardEmbedding) (*store.CardEmbedding, error) {
	return nil, errVectorSearchNotSupported
}

func (d *DB) DeleteCardEmbedding(ctx context.Context, cardID string) error {
	return errVectorSearchNotSupported
}

func (d *DB) FindCardsWithoutEmbedding(ctx context.Context, find *store.FindCardsWithoutEmbedding) ([]*store.Card, error) {
	return nil, errVectorSearchNotSupported
}

func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.CardWithScore, error) {
	return nil, errVectorSearchNotSupported
}
