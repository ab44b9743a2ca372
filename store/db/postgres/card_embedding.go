package postgres

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/memwallet/memwallet/store"
)

// UpsertCardEmbedding inserts or updates a card embedding.
func (d *DB) UpsertCardEmbedding(ctx context.Context, embedding *store.CardEmbedding) (*store.CardEmbedding, error) {
	stmt := `
		INSERT INTO card_embedding (card_id, model, embedding, created_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (card_id, model)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
		RETURNING id, created_ts, updated_ts
	`

	vector := pgvector.NewVector(embedding.Embedding)
	err := d.db.QueryRowContext(ctx, stmt,
		embedding.CardID,
		embedding.Model,
		vector,
		embedding.CreatedTs,
		embedding.UpdatedTs,
	).Scan(&embedding.ID, &embedding.CreatedTs, &embedding.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert card embedding")
	}

	return embedding, nil
}

// DeleteCardEmbedding deletes all embeddings stored for a card.
func (d *DB) DeleteCardEmbedding(ctx context.Context, cardID string) error {
	stmt := `DELETE FROM card_embedding WHERE card_id = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, cardID); err != nil {
		return errors.Wrap(err, "failed to delete card embedding")
	}
	return nil
}

// FindCardsWithoutEmbedding finds cards that have no embedding for the
// given model yet. The embedding runner uses this to backfill.
func (d *DB) FindCardsWithoutEmbedding(ctx context.Context, find *store.FindCardsWithoutEmbedding) ([]*store.Card, error) {
	limit := find.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT c.id, c.type, c.text, c.domains, c.priority, c.tags, c.persona, c.created_ts, c.updated_ts
		FROM memory_card c
		LEFT JOIN card_embedding e ON c.id = e.card_id AND e.model = ` + placeholder(1) + `
		WHERE e.id IS NULL
		ORDER BY c.created_ts ASC, c.id ASC
		LIMIT ` + placeholder(2)

	rows, err := d.db.QueryContext(ctx, query, find.Model, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find cards without embedding")
	}
	defer rows.Close()

	list := []*store.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, card)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// VectorSearch returns the cards closest to the query vector by cosine
// similarity. The <=> operator computes cosine distance, so ascending
// distance order yields the most similar cards first.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.CardWithScore, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	where, args := []string{"1 = 1"}, []any{}

	vector := pgvector.NewVector(opts.Vector)
	scoreExpr := "1 - (e.embedding <=> " + placeholder(len(args)+1) + ")"
	args = append(args, vector)

	if opts.Persona != "" {
		where, args = append(where, "c.persona = "+placeholder(len(args)+1)), append(args, opts.Persona)
	}
	if opts.Model != "" {
		where, args = append(where, "e.model = "+placeholder(len(args)+1)), append(args, opts.Model)
	}

	orderHolder := placeholder(len(args) + 1)
	args = append(args, vector)
	limitHolder := placeholder(len(args) + 1)
	args = append(args, limit)

	query := `
		SELECT
			c.id, c.type, c.text, c.domains, c.priority, c.tags, c.persona, c.created_ts, c.updated_ts,
			` + scoreExpr + ` AS score
		FROM memory_card c
		INNER JOIN card_embedding e ON c.id = e.card_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY e.embedding <=> ` + orderHolder + `
		LIMIT ` + limitHolder

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	results := []*store.CardWithScore{}
	for rows.Next() {
		var result store.CardWithScore
		var card store.Card
		var domains, tags string

		err := rows.Scan(
			&card.ID,
			&card.Type,
			&card.Text,
			&domains,
			&card.Priority,
			&tags,
			&card.Persona,
			&card.CreatedTs,
			&card.UpdatedTs,
			&result.Score,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}

		if card.Domains, err = unmarshalStringList(domains); err != nil {
			return nil, err
		}
		if card.Tags, err = unmarshalStringList(tags); err != nil {
			return nil, err
		}

		result.Card = &card
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
