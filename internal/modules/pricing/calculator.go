package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Price is the calculator output before it is attached to a quote.
type Price struct {
	Subtotal           decimal.Decimal
	Final              decimal.Decimal
	MinimumFareApplied bool
}

// CalculatePrice prices a chartered vehicle: the fare never depends on the
// number of passengers.
func CalculatePrice(distanceKm float64, t Tariff, minimumFare decimal.Decimal) Price {
	d := decimal.NewFromFloat(sanitizeDistance(distanceKm))
	subtotal := d.Mul(t.BaseRate).Mul(t.Multiplier)

	p := Price{Subtotal: subtotal, Final: subtotal}
	if subtotal.LessThan(minimumFare) {
		p.Final = minimumFare
		p.MinimumFareApplied = true
	}
	return p
}

// QuoteTrip resolves the tariff and prices the trip in one step.
func QuoteTrip(distanceKm float64, s *Settings, o *DriverOverride) (Quote, error) {
	distanceKm = sanitizeDistance(distanceKm)
	t, err := ResolveTariff(distanceKm, s, o)
	if err != nil {
		return Quote{}, err
	}
	p := CalculatePrice(distanceKm, t, s.MinimumFare)
	return Quote{
		DistanceKm:         distanceKm,
		Tariff:             t,
		Subtotal:           p.Subtotal,
		FinalPrice:         p.Final,
		MinimumFareApplied: p.MinimumFareApplied,
		Currency:           s.Currency,
	}, nil
}

func sanitizeDistance(km float64) float64 {
	if km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return 0
	}
	return km
}
