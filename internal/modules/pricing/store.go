// README: Pricing store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roadbook/internal/types"
)

// Repository is the durable side of pricing: the settings row and the
// per-driver overrides.
type Repository interface {
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
	GetOverride(ctx context.Context, driverID types.ID) (*DriverOverride, error)
	OverridesFor(ctx context.Context, driverIDs []types.ID) (map[types.ID]*DriverOverride, error)
	SaveOverride(ctx context.Context, o *DriverOverride) error
	DeleteOverride(ctx context.Context, driverID types.ID) error
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetSettings(ctx context.Context) (*Settings, error) {
	row := s.db.QueryRow(ctx, `
		SELECT base_rate_per_km, tier1_multiplier, tier2_multiplier, tier3_multiplier, tier4_multiplier,
		       minimum_fare, max_rate_per_km, overrides_enabled, commission_percent, currency, updated_at
		FROM pricing_settings
		WHERE id = 1`)

	var st Settings
	err := row.Scan(
		&st.BaseRatePerKm, &st.Tier1Multiplier, &st.Tier2Multiplier, &st.Tier3Multiplier, &st.Tier4Multiplier,
		&st.MinimumFare, &st.MaxRatePerKm, &st.OverridesEnabled, &st.CommissionPercent, &st.Currency, &st.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConfigurationMissing
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st *Settings) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO pricing_settings (
			id, base_rate_per_km, tier1_multiplier, tier2_multiplier, tier3_multiplier, tier4_multiplier,
			minimum_fare, max_rate_per_km, overrides_enabled, commission_percent, currency, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			base_rate_per_km = EXCLUDED.base_rate_per_km,
			tier1_multiplier = EXCLUDED.tier1_multiplier,
			tier2_multiplier = EXCLUDED.tier2_multiplier,
			tier3_multiplier = EXCLUDED.tier3_multiplier,
			tier4_multiplier = EXCLUDED.tier4_multiplier,
			minimum_fare = EXCLUDED.minimum_fare,
			max_rate_per_km = EXCLUDED.max_rate_per_km,
			overrides_enabled = EXCLUDED.overrides_enabled,
			commission_percent = EXCLUDED.commission_percent,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at`,
		st.BaseRatePerKm, st.Tier1Multiplier, st.Tier2Multiplier, st.Tier3Multiplier, st.Tier4Multiplier,
		st.MinimumFare, st.MaxRatePerKm, st.OverridesEnabled, st.CommissionPercent, st.Currency, st.UpdatedAt,
	)
	return err
}

// GetOverride returns nil without error when the driver has no override.
func (s *Store) GetOverride(ctx context.Context, driverID types.ID) (*DriverOverride, error) {
	row := s.db.QueryRow(ctx, `
		SELECT driver_id, base_rate_per_km, long_distance_multiplier, updated_at
		FROM driver_pricing_overrides
		WHERE driver_id = $1`, string(driverID))

	var o DriverOverride
	err := row.Scan(&o.DriverID, &o.BaseRatePerKm, &o.LongDistanceMultiplier, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) OverridesFor(ctx context.Context, driverIDs []types.ID) (map[types.ID]*DriverOverride, error) {
	out := make(map[types.ID]*DriverOverride, len(driverIDs))
	if len(driverIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(driverIDs))
	for i, id := range driverIDs {
		ids[i] = string(id)
	}
	rows, err := s.db.Query(ctx, `
		SELECT driver_id, base_rate_per_km, long_distance_multiplier, updated_at
		FROM driver_pricing_overrides
		WHERE driver_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o DriverOverride
		if err := rows.Scan(&o.DriverID, &o.BaseRatePerKm, &o.LongDistanceMultiplier, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out[o.DriverID] = &o
	}
	return out, rows.Err()
}

func (s *Store) SaveOverride(ctx context.Context, o *DriverOverride) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO driver_pricing_overrides (driver_id, base_rate_per_km, long_distance_multiplier, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (driver_id) DO UPDATE SET
			base_rate_per_km = EXCLUDED.base_rate_per_km,
			long_distance_multiplier = EXCLUDED.long_distance_multiplier,
			updated_at = EXCLUDED.updated_at`,
		string(o.DriverID), o.BaseRatePerKm, o.LongDistanceMultiplier, o.UpdatedAt,
	)
	return err
}

func (s *Store) DeleteOverride(ctx context.Context, driverID types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM driver_pricing_overrides WHERE driver_id = $1`, string(driverID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
