// README: Search request and priced results for vehicle availability.
package availability

import (
	"roadbook/internal/modules/fleet"
	"roadbook/internal/modules/location"
	"roadbook/internal/modules/pricing"
	"roadbook/internal/types"
)

type SearchRequest struct {
	Origin      types.ID   `json:"origin" form:"origin" validate:"required"`
	Destination types.ID   `json:"destination" form:"destination" validate:"required,nefield=Origin"`
	Stops       []types.ID `json:"stops" form:"stops"`
	Date        string     `json:"date" form:"date" validate:"required"`
	Passengers  int        `json:"passengers" form:"passengers" validate:"gte=0"`
	Luggage     int        `json:"luggage" form:"luggage" validate:"gte=0"`
}

// Waypoints returns origin, stops and destination in travel order.
func (r SearchRequest) Waypoints() []types.ID {
	ids := make([]types.ID, 0, len(r.Stops)+2)
	ids = append(ids, r.Origin)
	ids = append(ids, r.Stops...)
	return append(ids, r.Destination)
}

type PricedVehicle struct {
	Vehicle      fleet.Vehicle `json:"vehicle"`
	Quote        pricing.Quote `json:"quote"`
	DisplayPrice int64         `json:"display_price"`
}

type SearchResult struct {
	DistanceKm float64             `json:"distance_km"`
	Route      []location.Location `json:"route"`
	Vehicles   []PricedVehicle     `json:"vehicles"`
}
