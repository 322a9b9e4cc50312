// README: Pricing service: settings administration, driver overrides and quotes.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"roadbook/internal/types"
)

type Service struct {
	repo     Repository
	settings *CachedSettings
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(repo Repository, settings *CachedSettings, validate *validator.Validate, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, settings: settings, validate: validate, log: log, now: time.Now}
}

type UpdateSettingsCommand struct {
	BaseRatePerKm     float64 `json:"base_rate_per_km" validate:"gt=0"`
	Tier1Multiplier   float64 `json:"tier1_multiplier" validate:"gt=0"`
	Tier2Multiplier   float64 `json:"tier2_multiplier" validate:"gt=0"`
	Tier3Multiplier   float64 `json:"tier3_multiplier" validate:"gt=0"`
	Tier4Multiplier   float64 `json:"tier4_multiplier" validate:"gt=0"`
	MinimumFare       float64 `json:"minimum_fare" validate:"gte=0"`
	MaxRatePerKm      float64 `json:"max_rate_per_km" validate:"gt=0"`
	OverridesEnabled  bool    `json:"overrides_enabled"`
	CommissionPercent float64 `json:"commission_percent" validate:"gte=0,lte=100"`
	Currency          string  `json:"currency" validate:"required,len=3"`
}

type SetOverrideCommand struct {
	DriverID               types.ID `json:"-" validate:"required"`
	BaseRatePerKm          float64  `json:"base_rate_per_km" validate:"gt=0"`
	LongDistanceMultiplier float64  `json:"long_distance_multiplier" validate:"gt=0"`
}

// Settings returns the current settings or ErrConfigurationMissing.
func (s *Service) Settings(ctx context.Context) (*Settings, error) {
	return s.settings.Current(ctx)
}

func (s *Service) UpdateSettings(ctx context.Context, cmd UpdateSettingsCommand) (*Settings, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	if cmd.BaseRatePerKm > cmd.MaxRatePerKm {
		return nil, fmt.Errorf("%w: base rate %.4f above max %.4f", ErrRateCapExceeded, cmd.BaseRatePerKm, cmd.MaxRatePerKm)
	}

	st := &Settings{
		BaseRatePerKm:     decimal.NewFromFloat(cmd.BaseRatePerKm),
		Tier1Multiplier:   decimal.NewFromFloat(cmd.Tier1Multiplier),
		Tier2Multiplier:   decimal.NewFromFloat(cmd.Tier2Multiplier),
		Tier3Multiplier:   decimal.NewFromFloat(cmd.Tier3Multiplier),
		Tier4Multiplier:   decimal.NewFromFloat(cmd.Tier4Multiplier),
		MinimumFare:       decimal.NewFromFloat(cmd.MinimumFare),
		MaxRatePerKm:      decimal.NewFromFloat(cmd.MaxRatePerKm),
		OverridesEnabled:  cmd.OverridesEnabled,
		CommissionPercent: decimal.NewFromFloat(cmd.CommissionPercent),
		Currency:          cmd.Currency,
		UpdatedAt:         s.now().UTC(),
	}
	if err := s.repo.SaveSettings(ctx, st); err != nil {
		return nil, err
	}
	s.settings.Invalidate(ctx)
	s.log.WithFields(logrus.Fields{
		"max_rate_per_km":    st.MaxRatePerKm.String(),
		"overrides_enabled":  st.OverridesEnabled,
		"commission_percent": st.CommissionPercent.String(),
	}).Info("pricing settings updated")
	return st, nil
}

// SetOverride validates against the cap in force right now. A later cap
// change does not rewrite stored overrides; ResolveTariff clamps them.
func (s *Service) SetOverride(ctx context.Context, cmd SetOverrideCommand) (*DriverOverride, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	st, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !st.OverridesEnabled {
		return nil, fmt.Errorf("%w: driver overrides are disabled", types.ErrValidation)
	}
	rate := decimal.NewFromFloat(cmd.BaseRatePerKm)
	if rate.GreaterThan(st.MaxRatePerKm) {
		return nil, fmt.Errorf("%w: %s > %s", ErrRateCapExceeded, rate, st.MaxRatePerKm)
	}

	o := &DriverOverride{
		DriverID:               cmd.DriverID,
		BaseRatePerKm:          rate,
		LongDistanceMultiplier: decimal.NewFromFloat(cmd.LongDistanceMultiplier),
		UpdatedAt:              s.now().UTC(),
	}
	if err := s.repo.SaveOverride(ctx, o); err != nil {
		return nil, err
	}
	s.log.WithField("driver_id", cmd.DriverID).Info("driver pricing override saved")
	return o, nil
}

func (s *Service) DeleteOverride(ctx context.Context, driverID types.ID) error {
	return s.repo.DeleteOverride(ctx, driverID)
}

func (s *Service) Override(ctx context.Context, driverID types.ID) (*DriverOverride, error) {
	return s.repo.GetOverride(ctx, driverID)
}

func (s *Service) OverridesFor(ctx context.Context, driverIDs []types.ID) (map[types.ID]*DriverOverride, error) {
	return s.repo.OverridesFor(ctx, driverIDs)
}
