// README: Fleet store backed by Postgres.
package fleet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roadbook/internal/types"
)

type Repository interface {
	Get(ctx context.Context, id types.ID) (*Vehicle, error)
	ListEligible(ctx context.Context) ([]Vehicle, error)
	UpdateVerification(ctx context.Context, id types.ID, status VerificationStatus) error
	UpdateActive(ctx context.Context, id types.ID, active bool) error
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const selectVehicle = `
	SELECT id, driver_id, label, seats, luggage, verification_status, active,
	       main_photo, gallery, updated_at
	FROM vehicles`

func (s *Store) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	v, err := scanVehicle(s.db.QueryRow(ctx, selectVehicle+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) ListEligible(ctx context.Context) ([]Vehicle, error) {
	rows, err := s.db.Query(ctx, selectVehicle+`
		WHERE active = true AND verification_status = $1
		  AND main_photo <> '' AND cardinality(gallery) >= $2
		ORDER BY id`, VerificationApproved, MinGalleryPhotos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (s *Store) UpdateVerification(ctx context.Context, id types.ID, status VerificationStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles SET verification_status = $2, updated_at = NOW()
		WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateActive(ctx context.Context, id types.ID, active bool) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles SET active = $2, updated_at = NOW()
		WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.DriverID, &v.Label, &v.Seats, &v.Luggage, &v.VerificationStatus,
		&v.Active, &v.MainPhoto, &v.Gallery, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
