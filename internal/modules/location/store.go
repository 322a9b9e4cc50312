// README: Location store backed by Postgres.
package location

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roadbook/internal/types"
)

type Repository interface {
	Get(ctx context.Context, id types.ID) (*Location, error)
	ListActive(ctx context.Context) ([]Location, error)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const selectLocation = `SELECT id, names, lat, lng, active, priority FROM locations`

func (s *Store) Get(ctx context.Context, id types.ID) (*Location, error) {
	row := s.db.QueryRow(ctx, selectLocation+` WHERE id = $1`, id)
	l, err := scanLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Store) ListActive(ctx context.Context) ([]Location, error) {
	rows, err := s.db.Query(ctx, selectLocation+` WHERE active = true ORDER BY priority DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanLocation(row pgx.Row) (*Location, error) {
	var l Location
	if err := row.Scan(&l.ID, &l.Names, &l.Position.Lat, &l.Position.Lng, &l.Active, &l.Priority); err != nil {
		return nil, err
	}
	return &l, nil
}
