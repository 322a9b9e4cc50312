// README: Pure geographic helpers: haversine distance and route length over waypoints.
package location

import (
	"context"
	"math"

	"roadbook/internal/types"
)

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RouteDistanceKm sums the leg distances over points in order.
// Fewer than two points is a zero-length route.
func RouteDistanceKm(ctx context.Context, m DistanceMeter, points []types.Point) (float64, error) {
	var total float64
	for i := 1; i < len(points); i++ {
		leg, err := m.DistanceKm(ctx, points[i-1], points[i])
		if err != nil {
			return 0, err
		}
		total += leg
	}
	return total, nil
}
