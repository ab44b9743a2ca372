package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Card model related methods.
	CreateCard(ctx context.Context, create *Card) (*Card, error)
	ListCards(ctx context.Context, find *FindCard) ([]*Card, error)
	UpdateCard(ctx context.Context, update *UpdateCard) error
	DeleteCard(ctx context.Context, delete *DeleteCard) error

	// FindRelatedCardIDsByTags returns ids of cards sharing tags with the
	// query set, ordered by shared tag count descending. Supplementary
	// signal only; callers must tolerate errors.
	FindRelatedCardIDsByTags(ctx context.Context, tags []string, persona string, limit int) ([]string, error)

	// CardEmbedding model related methods.
	UpsertCardEmbedding(ctx context.Context, embedding *CardEmbedding) (*CardEmbedding, error)
	DeleteCardEmbedding(ctx context.Context, cardID string) error
	FindCardsWithoutEmbedding(ctx context.Context, find *FindCardsWithoutEmbedding) ([]*Card, error)
	VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*CardWithScore, error)
}
