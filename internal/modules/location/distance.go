package location

import (
	"context"

	"roadbook/internal/types"
)

// DistanceMeter measures the distance between two points in kilometres.
type DistanceMeter interface {
	DistanceKm(ctx context.Context, a, b types.Point) (float64, error)
}

// Haversine is the default meter: straight-line great-circle distance.
type Haversine struct{}

func (Haversine) DistanceKm(_ context.Context, a, b types.Point) (float64, error) {
	return haversineKm(a.Lat, a.Lng, b.Lat, b.Lng), nil
}
