// README: Ordering store backed by PostgreSQL with batched order writes.
package ordering

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roadbook/internal/types"
)

type Repository interface {
	List(ctx context.Context, t EntityType) ([]Item, error)
	// SaveOrder writes every display order in one batch.
	SaveOrder(ctx context.Context, t EntityType, order map[types.ID]int) error
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func tableFor(t EntityType) (string, error) {
	name, ok := tables[t]
	if !ok {
		return "", fmt.Errorf("%w: unknown collection %q", types.ErrValidation, t)
	}
	return pgx.Identifier{name}.Sanitize(), nil
}

func (s *Store) List(ctx context.Context, t EntityType) ([]Item, error) {
	table, err := tableFor(t)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT id, title, display_order FROM `+table+` ORDER BY display_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Title, &it.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) SaveOrder(ctx context.Context, t EntityType, order map[types.ID]int) error {
	table, err := tableFor(t)
	if err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for id, pos := range order {
		batch.Queue(`UPDATE `+table+` SET display_order = $1 WHERE id = $2`, pos, id)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()
	for range order {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save %s order: %w", t, err)
		}
	}
	return nil
}
