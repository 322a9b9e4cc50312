// README: Location service resolves catalogue entries and measures routes.
package location

import (
	"context"
	"fmt"

	"roadbook/internal/types"
)

type Service struct {
	repo  Repository
	meter DistanceMeter
}

// NewService falls back to Haversine when meter is nil.
func NewService(repo Repository, meter DistanceMeter) *Service {
	if meter == nil {
		meter = Haversine{}
	}
	return &Service{repo: repo, meter: meter}
}

func (s *Service) ListActive(ctx context.Context) ([]Location, error) {
	return s.repo.ListActive(ctx)
}

// Resolve loads each id in order. Missing ids are ErrNotFound, inactive ones
// ErrValidation.
func (s *Service) Resolve(ctx context.Context, ids []types.ID) ([]Location, error) {
	out := make([]Location, 0, len(ids))
	for _, id := range ids {
		l, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("location %s: %w", id, err)
		}
		if !l.Active {
			return nil, fmt.Errorf("%w: location %s is not active", types.ErrValidation, id)
		}
		out = append(out, *l)
	}
	return out, nil
}

// RouteDistanceKm measures the route through locs in order.
func (s *Service) RouteDistanceKm(ctx context.Context, locs []Location) (float64, error) {
	pts := make([]types.Point, len(locs))
	for i, l := range locs {
		pts[i] = l.Position
	}
	return RouteDistanceKm(ctx, s.meter, pts)
}
