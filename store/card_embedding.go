package store

// CardEmbedding stores the embedding vector for a card's text.
// Only the postgres driver persists embeddings; sqlite reports the
// feature as unsupported and callers degrade to lexical matching.
type CardEmbedding struct {
	ID        int64
	CardID    string
	Embedding []float32
	Model     string
	CreatedTs int64
	UpdatedTs int64
}

// FindCardsWithoutEmbedding finds cards missing an embedding for a model.
type FindCardsWithoutEmbedding struct {
	Model string
	Limit int
}

// VectorSearchOptions controls a card similarity search.
type VectorSearchOptions struct {
	Vector  []float32
	Persona string
	Model   string
	Limit   int
}
