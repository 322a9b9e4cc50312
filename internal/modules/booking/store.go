// README: Booking store backed by PostgreSQL.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roadbook/internal/types"
)

type Repository interface {
	Insert(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	Find(ctx context.Context, f Filter) ([]Booking, error)
	// UpdateStatusIf applies c only while the row still has c.From and
	// c.Version. It reports false when another writer got there first.
	UpdateStatusIf(ctx context.Context, c StatusChange) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
	Events(ctx context.Context, bookingID types.ID) ([]Event, error)
}

type StatusChange struct {
	BookingID   types.ID
	From        Status
	To          Status
	Version     int
	Reason      *string
	CancelledBy *ActorRole
	At          time.Time
}

type Filter struct {
	PassengerID *types.ID
	DriverID    *types.ID
	Status      Status
	Limit       int
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, b *Booking) error {
	tripDate, err := time.Parse(types.DateLayout, b.Date)
	if err != nil {
		return fmt.Errorf("%w: trip date %q", types.ErrValidation, b.Date)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, passenger_id, contact_name, contact_email, contact_phone, notes,
			pickup_id, dropoff_id, stop_ids, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, stop_points,
			trip_date, trip_time, passengers, luggage, vehicle_id, driver_id,
			status, status_version, distance_km, total_price, driver_earnings, admin_commission,
			commission_percent, minimum_fare_applied, currency, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26,
			$27, $28, $29, $30
		)`,
		b.ID, b.PassengerID, b.Contact.Name, b.Contact.Email, b.Contact.Phone, b.Contact.Notes,
		b.PickupID, b.DropoffID, idStrings(b.StopIDs), b.Pickup.Lat, b.Pickup.Lng, b.Dropoff.Lat, b.Dropoff.Lng, stopPoints(b.StopPoints),
		tripDate, b.Time, b.Passengers, b.LuggageBags, b.VehicleID, b.DriverID,
		b.Status, b.StatusVersion, b.DistanceKm, b.TotalPrice, b.DriverEarnings, b.AdminCommission,
		b.CommissionPercent, b.MinimumFareApplied, b.Currency, b.CreatedAt,
	)
	return err
}

const selectBooking = `
	SELECT id, passenger_id, contact_name, contact_email, contact_phone, notes,
	       pickup_id, dropoff_id, stop_ids, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, stop_points,
	       to_char(trip_date, 'YYYY-MM-DD'), trip_time, passengers, luggage, vehicle_id, driver_id,
	       status, status_version, distance_km, total_price, driver_earnings, admin_commission,
	       commission_percent, minimum_fare_applied, currency,
	       rejection_reason, cancellation_reason, cancelled_by,
	       created_at, confirmed_at, completed_at, rejected_at, cancelled_at
	FROM bookings`

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, selectBooking+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) Find(ctx context.Context, f Filter) ([]Booking, error) {
	var (
		where []string
		args  []any
	)
	if f.PassengerID != nil {
		args = append(args, *f.PassengerID)
		where = append(where, fmt.Sprintf("passenger_id = $%d", len(args)))
	}
	if f.DriverID != nil {
		args = append(args, *f.DriverID)
		where = append(where, fmt.Sprintf("driver_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	q := selectBooking
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatusIf(ctx context.Context, c StatusChange) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
		    status_version = status_version + 1,
		    confirmed_at = CASE WHEN $1 = 'confirmed' THEN $2 ELSE confirmed_at END,
		    completed_at = CASE WHEN $1 = 'completed' THEN $2 ELSE completed_at END,
		    rejected_at = CASE WHEN $1 = 'rejected' THEN $2 ELSE rejected_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN $2 ELSE cancelled_at END,
		    rejection_reason = CASE WHEN $1 = 'rejected' THEN $3 ELSE rejection_reason END,
		    cancellation_reason = CASE WHEN $1 = 'cancelled' THEN $3 ELSE cancellation_reason END,
		    cancelled_by = CASE WHEN $1 = 'cancelled' THEN $4 ELSE cancelled_by END
		WHERE id = $5 AND status = $6 AND status_version = $7`,
		string(c.To),
		c.At,
		c.Reason,
		c.CancelledBy,
		c.BookingID,
		string(c.From),
		c.Version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO booking_events (
			booking_id, from_status, to_status, action, actor_role, actor_id, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		e.BookingID, e.FromStatus, e.ToStatus, e.Action, e.ActorRole, e.ActorID, e.Reason, e.CreatedAt,
	).Scan(&e.ID)
}

func (s *Store) Events(ctx context.Context, bookingID types.ID) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, from_status, to_status, action, actor_role, actor_id, reason, created_at
		FROM booking_events
		WHERE booking_id = $1
		ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.BookingID, &e.FromStatus, &e.ToStatus, &e.Action,
			&e.ActorRole, &e.ActorID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b       Booking
		stopIDs []string
	)
	err := row.Scan(
		&b.ID, &b.PassengerID, &b.Contact.Name, &b.Contact.Email, &b.Contact.Phone, &b.Contact.Notes,
		&b.PickupID, &b.DropoffID, &stopIDs, &b.Pickup.Lat, &b.Pickup.Lng, &b.Dropoff.Lat, &b.Dropoff.Lng, &b.StopPoints,
		&b.Date, &b.Time, &b.Passengers, &b.LuggageBags, &b.VehicleID, &b.DriverID,
		&b.Status, &b.StatusVersion, &b.DistanceKm, &b.TotalPrice, &b.DriverEarnings, &b.AdminCommission,
		&b.CommissionPercent, &b.MinimumFareApplied, &b.Currency,
		&b.RejectionReason, &b.CancellationReason, &b.CancelledBy,
		&b.CreatedAt, &b.ConfirmedAt, &b.CompletedAt, &b.RejectedAt, &b.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	for _, id := range stopIDs {
		b.StopIDs = append(b.StopIDs, types.ID(id))
	}
	return &b, nil
}

func idStrings(ids []types.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// stopPoints keeps an empty route as [] rather than NULL in the jsonb column.
func stopPoints(pts []types.Point) []types.Point {
	if pts == nil {
		return []types.Point{}
	}
	return pts
}
