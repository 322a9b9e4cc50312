package pricing

import (
	"context"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"roadbook/internal/types"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// exampleSettings mirrors the reference tariff used throughout the tests.
func exampleSettings() *Settings {
	return &Settings{
		BaseRatePerKm:     d("1.5"),
		Tier1Multiplier:   d("1.5"),
		Tier2Multiplier:   d("1.3"),
		Tier3Multiplier:   d("1.2"),
		Tier4Multiplier:   d("1.0"),
		MinimumFare:       d("30"),
		MaxRatePerKm:      d("5.0"),
		OverridesEnabled:  true,
		CommissionPercent: d("30"),
		Currency:          "EUR",
	}
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type memRepo struct {
	mu        sync.Mutex
	settings  *Settings
	overrides map[types.ID]*DriverOverride
	reads     int
}

func newMemRepo(st *Settings) *memRepo {
	return &memRepo{settings: st, overrides: map[types.ID]*DriverOverride{}}
}

func (m *memRepo) GetSettings(_ context.Context) (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.settings == nil {
		return nil, ErrConfigurationMissing
	}
	cp := *m.settings
	return &cp, nil
}

func (m *memRepo) SaveSettings(_ context.Context, s *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.settings = &cp
	return nil
}

func (m *memRepo) GetOverride(_ context.Context, id types.ID) (*DriverOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overrides[id], nil
}

func (m *memRepo) OverridesFor(_ context.Context, ids []types.ID) (map[types.ID]*DriverOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[types.ID]*DriverOverride{}
	for _, id := range ids {
		if o, ok := m.overrides[id]; ok {
			out[id] = o
		}
	}
	return out, nil
}

func (m *memRepo) SaveOverride(_ context.Context, o *DriverOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[o.DriverID] = o
	return nil
}

func (m *memRepo) DeleteOverride(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.overrides[id]; !ok {
		return types.ErrNotFound
	}
	delete(m.overrides, id)
	return nil
}
