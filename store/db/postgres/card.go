package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/memwallet/memwallet/store"
)

func (d *DB) CreateCard(ctx context.Context, create *store.Card) (*store.Card, error) {
	domains, err := marshalStringList(create.Domains)
	if err != nil {
		return nil, err
	}
	tags, err := marshalStringList(create.Tags)
	if err != nil {
		return nil, err
	}

	fields := []string{"id", "type", "text", "domains", "priority", "tags", "persona", "created_ts", "updated_ts"}
	args := []any{
		create.ID,
		create.Type,
		create.Text,
		domains,
		create.Priority,
		tags,
		create.Persona,
		create.CreatedTs,
		create.UpdatedTs,
	}

	stmt := `INSERT INTO memory_card (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create memory_card")
	}

	return create, nil
}

func (d *DB) ListCards(ctx context.Context, find *store.FindCard) ([]*store.Card, error) {
	if find == nil {
		return nil, errors.New("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if len(find.IDs) > 0 {
		list := []any{}
		holders := []string{}
		for _, id := range find.IDs {
			list = append(list, id)
			holders = append(holders, placeholder(len(args)+len(list)))
		}
		where, args = append(where, "id IN ("+strings.Join(holders, ", ")+")"), append(args, list...)
	}
	if find.Persona != nil {
		where, args = append(where, "persona = "+placeholder(len(args)+1)), append(args, *find.Persona)
	}
	if find.Type != nil {
		where, args = append(where, "type = "+placeholder(len(args)+1)), append(args, *find.Type)
	}
	if find.Domain != nil {
		where, args = append(where, "domains ILIKE "+placeholder(len(args)+1)), append(args, jsonContains(*find.Domain))
	}
	if find.Tag != nil {
		where, args = append(where, "tags ILIKE "+placeholder(len(args)+1)), append(args, jsonContains(*find.Tag))
	}

	// Insertion order is the wallet order downstream consumers rely on
	// for deterministic tie-breaking.
	query := `SELECT id, type, text, domains, priority, tags, persona, created_ts, updated_ts
		FROM memory_card WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts ASC, id ASC`

	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
		if find.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list memory_cards")
	}
	defer rows.Close()

	list := make([]*store.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, card)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate memory_cards")
	}

	return list, nil
}

func (d *DB) UpdateCard(ctx context.Context, update *store.UpdateCard) error {
	set, args := []string{}, []any{}

	if update.Type != nil {
		set, args = append(set, "type = "+placeholder(len(args)+1)), append(args, *update.Type)
	}
	if update.Text != nil {
		set, args = append(set, "text = "+placeholder(len(args)+1)), append(args, *update.Text)
	}
	if update.Domains != nil {
		domains, err := marshalStringList(update.Domains)
		if err != nil {
			return err
		}
		set, args = append(set, "domains = "+placeholder(len(args)+1)), append(args, domains)
	}
	if update.Priority != nil {
		set, args = append(set, "priority = "+placeholder(len(args)+1)), append(args, *update.Priority)
	}
	if update.Tags != nil {
		tags, err := marshalStringList(update.Tags)
		if err != nil {
			return err
		}
		set, args = append(set, "tags = "+placeholder(len(args)+1)), append(args, tags)
	}
	if len(set) == 0 {
		return errors.New("no fields to update")
	}
	if update.UpdatedTs != 0 {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, update.UpdatedTs)
	}

	args = append(args, update.ID)
	stmt := `UPDATE memory_card SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return errors.Wrap(err, "failed to update memory_card")
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.Errorf("memory_card %s not found", update.ID)
	}

	return nil
}

func (d *DB) DeleteCard(ctx context.Context, delete *store.DeleteCard) error {
	if delete == nil {
		return errors.New("delete parameter cannot be nil")
	}

	where, args := []string{}, []any{}

	if delete.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *delete.ID)
	}
	if delete.Persona != nil {
		where, args = append(where, "persona = "+placeholder(len(args)+1)), append(args, *delete.Persona)
	}

	if len(where) == 0 {
		return errors.New("no condition to delete memory_card")
	}

	stmt := `DELETE FROM memory_card WHERE ` + strings.Join(where, " AND ")
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to delete memory_card")
	}

	return nil
}

// FindRelatedCardIDsByTags ranks cards within a persona by how many of the
// given tags they carry. Cards sharing no tags are excluded.
func (d *DB) FindRelatedCardIDsByTags(ctx context.Context, tags []string, persona string, limit int) ([]string, error) {
	if len(tags) == 0 {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	cases, args := []string{}, []any{}
	for _, tag := range tags {
		cases = append(cases, "(CASE WHEN tags ILIKE "+placeholder(len(args)+1)+" THEN 1 ELSE 0 END)")
		args = append(args, jsonContains(tag))
	}
	personaHolder := placeholder(len(args) + 1)
	args = append(args, persona)
	limitHolder := placeholder(len(args) + 1)
	args = append(args, limit)

	query := `SELECT id FROM (
			SELECT id, created_ts, ` + strings.Join(cases, " + ") + ` AS matched
			FROM memory_card
			WHERE persona = ` + personaHolder + `
		) ranked
		WHERE matched > 0
		ORDER BY matched DESC, created_ts ASC, id ASC
		LIMIT ` + limitHolder

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find related cards by tags")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan card id")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate card ids")
	}

	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*store.Card, error) {
	var card store.Card
	var domains, tags string
	if err := row.Scan(
		&card.ID,
		&card.Type,
		&card.Text,
		&domains,
		&card.Priority,
		&tags,
		&card.Persona,
		&card.CreatedTs,
		&card.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan memory_card")
	}

	var err error
	if card.Domains, err = unmarshalStringList(domains); err != nil {
		return nil, err
	}
	if card.Tags, err = unmarshalStringList(tags); err != nil {
		return nil, err
	}

	return &card, nil
}
