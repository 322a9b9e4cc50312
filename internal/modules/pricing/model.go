// README: Pricing settings, driver overrides and quote definitions.
package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"roadbook/internal/types"
)

var (
	ErrConfigurationMissing = errors.New("pricing settings are not configured")
	ErrRateCapExceeded      = errors.New("rate exceeds platform maximum per km")
)

// Settings is the platform-wide tariff. A single row, edited by administrators.
type Settings struct {
	BaseRatePerKm     decimal.Decimal `json:"base_rate_per_km"`
	Tier1Multiplier   decimal.Decimal `json:"tier1_multiplier"`
	Tier2Multiplier   decimal.Decimal `json:"tier2_multiplier"`
	Tier3Multiplier   decimal.Decimal `json:"tier3_multiplier"`
	Tier4Multiplier   decimal.Decimal `json:"tier4_multiplier"`
	MinimumFare       decimal.Decimal `json:"minimum_fare"`
	MaxRatePerKm      decimal.Decimal `json:"max_rate_per_km"`
	OverridesEnabled  bool            `json:"overrides_enabled"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	Currency          string          `json:"currency"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// DriverOverride replaces the base rate and the long-distance multiplier for
// one driver while overrides are enabled.
type DriverOverride struct {
	DriverID               types.ID        `json:"driver_id"`
	BaseRatePerKm          decimal.Decimal `json:"base_rate_per_km"`
	LongDistanceMultiplier decimal.Decimal `json:"long_distance_multiplier"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

type Tier int

const (
	Tier1 Tier = iota + 1 // (0, 50] km
	Tier2                 // (50, 100] km
	Tier3                 // (100, 200] km
	Tier4                 // > 200 km
)

type Tariff struct {
	BaseRate        decimal.Decimal `json:"base_rate"`
	Multiplier      decimal.Decimal `json:"multiplier"`
	Tier            Tier            `json:"tier"`
	OverrideApplied bool            `json:"override_applied"`
	RateCapped      bool            `json:"rate_capped"`
}

// Quote is an explainable price for one vehicle over one route.
type Quote struct {
	DistanceKm         float64         `json:"distance_km"`
	Tariff             Tariff          `json:"tariff"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	FinalPrice         decimal.Decimal `json:"final_price"`
	MinimumFareApplied bool            `json:"minimum_fare_applied"`
	Currency           string          `json:"currency"`
}

func (q Quote) Price() types.Money {
	return types.NewMoney(q.FinalPrice, q.Currency)
}

// DisplayPrice is the final price rounded to a whole currency unit.
func (q Quote) DisplayPrice() int64 {
	return q.Price().Display()
}

// Split divides a final price between the driver and the platform.
type Split struct {
	Earnings   decimal.Decimal `json:"driver_earnings"`
	Commission decimal.Decimal `json:"admin_commission"`
	Percent    decimal.Decimal `json:"commission_percent"`
}
