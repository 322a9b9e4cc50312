package location

import (
	"context"
	"errors"
	"math"
	"testing"

	"roadbook/internal/types"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			lat1:      37.9838, lng1: 23.7275,
			lat2:      37.9838, lng2: 23.7275,
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "Athens to Corinth (~78km)",
			lat1:      37.9838, lng1: 23.7275,
			lat2:      37.9386, lng2: 22.9322,
			wantKm:    70,
			tolerance: 10,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			lat1:      40.7128, lng1: -74.0060,
			lat2:      34.0522, lng2: -118.2437,
			wantKm:    3944,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("haversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	d1 := haversineKm(25.0, 121.0, 26.0, 122.0)
	d2 := haversineKm(26.0, 122.0, 25.0, 121.0)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}

// fixedMeter reports 10 km per leg.
type fixedMeter struct{ calls int }

func (m *fixedMeter) DistanceKm(context.Context, types.Point, types.Point) (float64, error) {
	m.calls++
	return 10, nil
}

type failingMeter struct{}

func (failingMeter) DistanceKm(context.Context, types.Point, types.Point) (float64, error) {
	return 0, errors.New("upstream unavailable")
}

func TestRouteDistanceKm_SumsLegs(t *testing.T) {
	pts := []types.Point{{Lat: 1}, {Lat: 2}, {Lat: 3}, {Lat: 4}}
	m := &fixedMeter{}

	got, err := RouteDistanceKm(context.Background(), m, pts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 30 || m.calls != 3 {
		t.Errorf("got %f km over %d legs, want 30 over 3", got, m.calls)
	}
}

func TestRouteDistanceKm_Degenerate(t *testing.T) {
	for _, pts := range [][]types.Point{nil, {{Lat: 1, Lng: 1}}} {
		got, err := RouteDistanceKm(context.Background(), Haversine{}, pts)
		if err != nil || got != 0 {
			t.Errorf("RouteDistanceKm(%v) = %f, %v; want 0, nil", pts, got, err)
		}
	}
}

func TestRouteDistanceKm_PropagatesMeterError(t *testing.T) {
	_, err := RouteDistanceKm(context.Background(), failingMeter{}, []types.Point{{}, {Lat: 1}})
	if err == nil {
		t.Fatal("expected error")
	}
}
