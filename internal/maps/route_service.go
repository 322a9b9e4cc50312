package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"roadbook/internal/types"
)

// RouteService measures road distances with the Google Maps Distance Matrix API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// DistanceKm returns the driving distance between two points.
func (s *RouteService) DistanceKm(ctx context.Context, a, b types.Point) (float64, error) {
	req := &maps.DistanceMatrixRequest{
		Origins:      []string{latLng(a)},
		Destinations: []string{latLng(b)},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	}

	resp, err := s.client.DistanceMatrix(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("distance matrix request failed: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("no route found")
	}

	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return 0, fmt.Errorf("no route found: %s", el.Status)
	}
	return float64(el.Distance.Meters) / 1000.0, nil
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}
