package pricing

// tierBreakpoints are inclusive upper bounds for tiers 1..3.
var tierBreakpoints = [...]float64{50, 100, 200}

func TierFor(distanceKm float64) Tier {
	for i, bp := range tierBreakpoints {
		if distanceKm <= bp {
			return Tier(i + 1)
		}
	}
	return Tier4
}

// ResolveTariff picks the per-km rate and tier multiplier for a distance.
//
// Overrides only replace the base rate and the tier 4 multiplier, and only
// while s.OverridesEnabled is set. An override written under an older, higher
// cap is clamped to the current MaxRatePerKm and reported as RateCapped.
func ResolveTariff(distanceKm float64, s *Settings, o *DriverOverride) (Tariff, error) {
	if s == nil {
		return Tariff{}, ErrConfigurationMissing
	}
	useOverride := s.OverridesEnabled && o != nil

	t := Tariff{Tier: TierFor(distanceKm), BaseRate: s.BaseRatePerKm}
	if useOverride {
		t.BaseRate = o.BaseRatePerKm
		t.OverrideApplied = true
	}
	if s.MaxRatePerKm.IsPositive() && t.BaseRate.GreaterThan(s.MaxRatePerKm) {
		t.BaseRate = s.MaxRatePerKm
		t.RateCapped = true
	}

	switch t.Tier {
	case Tier1:
		t.Multiplier = s.Tier1Multiplier
	case Tier2:
		t.Multiplier = s.Tier2Multiplier
	case Tier3:
		t.Multiplier = s.Tier3Multiplier
	default:
		t.Multiplier = s.Tier4Multiplier
		if useOverride {
			t.Multiplier = o.LongDistanceMultiplier
		}
	}
	return t, nil
}
