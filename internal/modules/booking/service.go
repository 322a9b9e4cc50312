// README: Booking service implements creation, state transitions and persistence.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"roadbook/internal/modules/fleet"
	"roadbook/internal/modules/location"
	"roadbook/internal/modules/pricing"
	"roadbook/internal/types"
)

type Locations interface {
	Resolve(ctx context.Context, ids []types.ID) ([]location.Location, error)
	RouteDistanceKm(ctx context.Context, locs []location.Location) (float64, error)
}

type Vehicles interface {
	Get(ctx context.Context, id types.ID) (*fleet.Vehicle, error)
}

type Overrides interface {
	Override(ctx context.Context, driverID types.ID) (*pricing.DriverOverride, error)
}

type Service struct {
	repo      Repository
	locations Locations
	vehicles  Vehicles
	settings  pricing.SettingsProvider
	overrides Overrides
	publisher Publisher
	validate  *validator.Validate
	log       logrus.FieldLogger
	tz        *time.Location
	now       func() time.Time
	newID     func() string
}

type Deps struct {
	Repo      Repository
	Locations Locations
	Vehicles  Vehicles
	Settings  pricing.SettingsProvider
	Overrides Overrides
	Publisher Publisher
	Validate  *validator.Validate
	Log       logrus.FieldLogger
	Timezone  *time.Location
}

func NewService(d Deps) *Service {
	if d.Publisher == nil {
		d.Publisher = NopPublisher{}
	}
	if d.Timezone == nil {
		d.Timezone = time.UTC
	}
	return &Service{
		repo:      d.Repo,
		locations: d.Locations,
		vehicles:  d.Vehicles,
		settings:  d.Settings,
		overrides: d.Overrides,
		publisher: d.Publisher,
		validate:  d.Validate,
		log:       d.Log,
		tz:        d.Timezone,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

type CreateCommand struct {
	PassengerID types.ID   `json:"-"`
	Contact     Contact    `json:"contact"`
	PickupID    types.ID   `json:"pickup_id" validate:"required"`
	DropoffID   types.ID   `json:"dropoff_id" validate:"required,nefield=PickupID"`
	StopIDs     []types.ID `json:"stop_ids" validate:"max=10,dive,required"`
	Date        string     `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string     `json:"time" validate:"required,datetime=15:04"`
	Passengers  int        `json:"passengers" validate:"min=1,max=60"`
	Luggage     int        `json:"luggage" validate:"gte=0,max=60"`
	VehicleID   types.ID   `json:"vehicle_id"`
}

type TransitionCommand struct {
	BookingID types.ID `json:"-"`
	Action    Action   `json:"action"`
	Reason    string   `json:"reason"`
	Actor     Actor    `json:"-"`
}

// Create prices the trip server side and stores a pending booking. Price and
// commission split are frozen here and never recomputed.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	if err := types.CheckTripDate(cmd.Date, s.now(), s.tz); err != nil {
		return nil, err
	}

	waypoints := make([]types.ID, 0, len(cmd.StopIDs)+2)
	waypoints = append(waypoints, cmd.PickupID)
	waypoints = append(waypoints, cmd.StopIDs...)
	waypoints = append(waypoints, cmd.DropoffID)

	route, err := s.locations.Resolve(ctx, waypoints)
	if err != nil {
		return nil, err
	}
	distanceKm, err := s.locations.RouteDistanceKm(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("measure route: %w", err)
	}

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	var (
		vehicleID *types.ID
		driverID  *types.ID
		override  *pricing.DriverOverride
	)
	if cmd.VehicleID != "" {
		v, err := s.vehicles.Get(ctx, cmd.VehicleID)
		if err != nil {
			return nil, err
		}
		if !v.Eligible() {
			return nil, fmt.Errorf("%w: vehicle %s is not available", types.ErrValidation, v.ID)
		}
		if !v.Fits(cmd.Passengers, cmd.Luggage) {
			return nil, fmt.Errorf("%w: vehicle %s is too small for this party", types.ErrValidation, v.ID)
		}
		vehicleID = &v.ID
		if v.DriverID != "" {
			d := v.DriverID
			driverID = &d
		}
		if settings.OverridesEnabled && driverID != nil {
			if override, err = s.overrides.Override(ctx, *driverID); err != nil {
				return nil, err
			}
		}
	}

	quote, err := pricing.QuoteTrip(distanceKm, settings, override)
	if err != nil {
		return nil, err
	}
	split, err := pricing.SplitCommission(quote.FinalPrice, settings.CommissionPercent)
	if err != nil {
		return nil, err
	}

	stops := make([]types.Point, 0, len(cmd.StopIDs))
	for _, l := range route[1 : len(route)-1] {
		stops = append(stops, l.Position)
	}

	now := s.now().UTC()
	b := &Booking{
		ID:                 types.ID(s.newID()),
		Contact:            cmd.Contact,
		PickupID:           cmd.PickupID,
		DropoffID:          cmd.DropoffID,
		StopIDs:            cmd.StopIDs,
		Pickup:             route[0].Position,
		Dropoff:            route[len(route)-1].Position,
		StopPoints:         stops,
		Date:               cmd.Date,
		Time:               cmd.Time,
		Passengers:         cmd.Passengers,
		LuggageBags:        cmd.Luggage,
		VehicleID:          vehicleID,
		DriverID:           driverID,
		Status:             StatusPending,
		StatusVersion:      0,
		DistanceKm:         quote.DistanceKm,
		TotalPrice:         quote.FinalPrice,
		DriverEarnings:     split.Earnings,
		AdminCommission:    split.Commission,
		CommissionPercent:  split.Percent,
		MinimumFareApplied: quote.MinimumFareApplied,
		Currency:           quote.Currency,
		CreatedAt:          now,
	}
	if cmd.PassengerID != "" {
		p := cmd.PassengerID
		b.PassengerID = &p
	}

	if err := s.repo.Insert(ctx, b); err != nil {
		return nil, err
	}

	actor := Actor{Role: RolePassenger, ID: cmd.PassengerID}
	s.record(ctx, b, StatusNone, ActionCreate, actor, nil, now)
	return b, nil
}

// Transition applies one action to a booking. Guards run in a fixed order:
// terminal status, action allowed from status, actor role, actor identity,
// required reason. The write is conditional on the status and version read
// here, so a concurrent writer turns this call into ErrConflict.
func (s *Service) Transition(ctx context.Context, cmd TransitionCommand) (*Booking, error) {
	if !cmd.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", types.ErrValidation, cmd.Action)
	}
	b, err := s.repo.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(cmd.Reason)
	to, err := checkTransition(b, cmd.Action, cmd.Actor, reason)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	change := StatusChange{
		BookingID: b.ID,
		From:      b.Status,
		To:        to,
		Version:   b.StatusVersion,
		At:        now,
	}
	if reason != "" {
		change.Reason = &reason
	}
	if to == StatusCancelled {
		role := cmd.Actor.Role
		change.CancelledBy = &role
	}

	ok, err := s.repo.UpdateStatusIf(ctx, change)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	from := b.Status
	applyChange(b, change)
	s.record(ctx, b, from, cmd.Action, cmd.Actor, change.Reason, now)
	return b, nil
}

func checkTransition(b *Booking, action Action, actor Actor, reason string) (Status, error) {
	if b.Status.Terminal() {
		return "", fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.Status)
	}
	r, ok := AllowedTransitions[b.Status][action]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a %s booking", ErrInvalidTransition, action, b.Status)
	}
	if !r.allows(actor.Role) {
		return "", fmt.Errorf("%w: %s cannot %s", ErrForbidden, actor.Role, action)
	}
	if err := checkOwnership(b, actor); err != nil {
		return "", err
	}
	switch r.reason {
	case reasonRequired:
		if reason == "" {
			return "", fmt.Errorf("%w: reason is required to %s", types.ErrValidation, action)
		}
	case reasonUnlessPassenger:
		if reason == "" && actor.Role != RolePassenger {
			return "", fmt.Errorf("%w: reason is required to %s", types.ErrValidation, action)
		}
	}
	return r.to, nil
}

// checkOwnership ties drivers to their assigned bookings and passengers to
// their own. Admins act on any booking. A booking made without sign-in has
// no passenger, so only an admin can cancel it.
func checkOwnership(b *Booking, actor Actor) error {
	switch actor.Role {
	case RoleAdmin:
		return nil
	case RoleDriver:
		if b.DriverID == nil || *b.DriverID != actor.ID {
			return fmt.Errorf("%w: booking is not assigned to this driver", ErrForbidden)
		}
	default:
		if b.PassengerID == nil || *b.PassengerID != actor.ID {
			return fmt.Errorf("%w: booking belongs to another passenger", ErrForbidden)
		}
	}
	return nil
}

func applyChange(b *Booking, c StatusChange) {
	at := c.At
	b.Status = c.To
	b.StatusVersion = c.Version + 1
	switch c.To {
	case StatusConfirmed:
		b.ConfirmedAt = &at
	case StatusCompleted:
		b.CompletedAt = &at
	case StatusRejected:
		b.RejectedAt = &at
		b.RejectionReason = c.Reason
	case StatusCancelled:
		b.CancelledAt = &at
		b.CancellationReason = c.Reason
		b.CancelledBy = c.CancelledBy
	}
}

// record writes the audit row and notifies subscribers. The transition is
// already committed, so failures here are logged and not returned.
func (s *Service) record(ctx context.Context, b *Booking, from Status, action Action, actor Actor, reason *string, at time.Time) {
	var actorID *types.ID
	if actor.ID != "" {
		id := actor.ID
		actorID = &id
	}
	log := s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"event":      action,
		"actor":      actor.Role,
		"from":       from,
		"to":         b.Status,
	})

	if err := s.repo.AppendEvent(ctx, &Event{
		BookingID:  b.ID,
		FromStatus: from,
		ToStatus:   b.Status,
		Action:     action,
		ActorRole:  actor.Role,
		ActorID:    actorID,
		Reason:     reason,
		CreatedAt:  at,
	}); err != nil {
		log.WithError(err).Warn("append booking event failed")
	}

	if err := s.publisher.Publish(ctx, Change{
		ID:          s.newID(),
		BookingID:   b.ID,
		Action:      action,
		From:        from,
		To:          b.Status,
		ActorRole:   actor.Role,
		ActorID:     actorID,
		Reason:      reason,
		PassengerID: b.PassengerID,
		DriverID:    b.DriverID,
		TotalPrice:  b.TotalPrice.String(),
		Currency:    b.Currency,
		OccurredAt:  at,
	}); err != nil {
		log.WithError(err).Warn("publish booking change failed")
	}
	log.Info("booking transition")
}

// Get returns a booking the actor is allowed to see.
func (s *Service) Get(ctx context.Context, id types.ID, actor Actor) (*Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(b, actor); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns the actor's bookings, newest first. Admins see all bookings.
func (s *Service) List(ctx context.Context, actor Actor, status Status, limit int) ([]Booking, error) {
	f := Filter{Status: status, Limit: limit}
	switch actor.Role {
	case RoleAdmin:
	case RoleDriver:
		id := actor.ID
		f.DriverID = &id
	default:
		if actor.ID == "" {
			return nil, fmt.Errorf("%w: anonymous passengers have no booking list", ErrForbidden)
		}
		id := actor.ID
		f.PassengerID = &id
	}
	return s.repo.Find(ctx, f)
}

func (s *Service) Events(ctx context.Context, id types.ID, actor Actor) ([]Event, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.repo.Events(ctx, id)
}
