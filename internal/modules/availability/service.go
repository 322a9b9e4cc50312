// README: Availability service: eligible vehicles for a route, each priced.
package availability

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
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
	ListEligible(ctx context.Context) ([]fleet.Vehicle, error)
}

type Overrides interface {
	OverridesFor(ctx context.Context, driverIDs []types.ID) (map[types.ID]*pricing.DriverOverride, error)
}

type Service struct {
	locations Locations
	vehicles  Vehicles
	settings  pricing.SettingsProvider
	overrides Overrides
	validate  *validator.Validate
	log       logrus.FieldLogger
	tz        *time.Location
	now       func() time.Time
}

func NewService(locs Locations, vehicles Vehicles, settings pricing.SettingsProvider, overrides Overrides, validate *validator.Validate, log logrus.FieldLogger, tz *time.Location) *Service {
	if tz == nil {
		tz = time.UTC
	}
	return &Service{
		locations: locs,
		vehicles:  vehicles,
		settings:  settings,
		overrides: overrides,
		validate:  validate,
		log:       log,
		tz:        tz,
		now:       time.Now,
	}
}

// Search lists every eligible vehicle that fits the request, priced for the
// route and sorted cheapest first. Existing bookings on the date are not
// consulted.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	if err := types.CheckTripDate(req.Date, s.now(), s.tz); err != nil {
		return nil, err
	}

	route, err := s.locations.Resolve(ctx, req.Waypoints())
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

	vehicles, err := s.vehicles.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	vehicles = slices.DeleteFunc(vehicles, func(v fleet.Vehicle) bool {
		return !v.Eligible() || !v.Fits(req.Passengers, req.Luggage)
	})

	var overrides map[types.ID]*pricing.DriverOverride
	if settings.OverridesEnabled && len(vehicles) > 0 {
		overrides, err = s.overrides.OverridesFor(ctx, driverIDs(vehicles))
		if err != nil {
			return nil, err
		}
	}

	priced := make([]PricedVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		q, err := pricing.QuoteTrip(distanceKm, settings, overrides[v.DriverID])
		if err != nil {
			return nil, err
		}
		priced = append(priced, PricedVehicle{Vehicle: v, Quote: q, DisplayPrice: q.DisplayPrice()})
	}
	slices.SortFunc(priced, func(a, b PricedVehicle) int {
		if c := a.Quote.FinalPrice.Cmp(b.Quote.FinalPrice); c != 0 {
			return c
		}
		return strings.Compare(string(a.Vehicle.ID), string(b.Vehicle.ID))
	})

	s.log.WithFields(logrus.Fields{
		"origin":      req.Origin,
		"destination": req.Destination,
		"stops":       len(req.Stops),
		"distance_km": distanceKm,
		"results":     len(priced),
	}).Debug("availability search")

	return &SearchResult{DistanceKm: distanceKm, Route: route, Vehicles: priced}, nil
}

func driverIDs(vs []fleet.Vehicle) []types.ID {
	ids := make([]types.ID, 0, len(vs))
	for _, v := range vs {
		if v.DriverID != "" {
			ids = append(ids, v.DriverID)
		}
	}
	return ids
}
