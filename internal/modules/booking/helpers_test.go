package booking

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"roadbook/internal/modules/fleet"
	"roadbook/internal/modules/location"
	"roadbook/internal/modules/pricing"
	"roadbook/internal/types"
)

// memRepo mirrors the conditional-update semantics of Store.
type memRepo struct {
	mu       sync.Mutex
	bookings map[types.ID]Booking
	events   []Event
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: map[types.ID]Booking{}}
}

func (m *memRepo) Insert(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; ok {
		return errors.New("duplicate booking id")
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m *memRepo) Get(_ context.Context, id types.ID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &b, nil
}

func (m *memRepo) Find(_ context.Context, f Filter) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		if f.PassengerID != nil && (b.PassengerID == nil || *b.PassengerID != *f.PassengerID) {
			continue
		}
		if f.DriverID != nil && (b.DriverID == nil || *b.DriverID != *f.DriverID) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) UpdateStatusIf(_ context.Context, c StatusChange) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[c.BookingID]
	if !ok || b.Status != c.From || b.StatusVersion != c.Version {
		return false, nil
	}
	applyChange(&b, c)
	m.bookings[c.BookingID] = b
	return true, nil
}

func (m *memRepo) AppendEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.events) + 1)
	m.events = append(m.events, *e)
	return nil
}

func (m *memRepo) Events(_ context.Context, id types.ID) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.BookingID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type locRepo map[types.ID]location.Location

func (m locRepo) Get(_ context.Context, id types.ID) (*location.Location, error) {
	l, ok := m[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &l, nil
}

func (m locRepo) ListActive(context.Context) ([]location.Location, error) { return nil, nil }

type legMeter float64

func (m legMeter) DistanceKm(context.Context, types.Point, types.Point) (float64, error) {
	return float64(m), nil
}

var gallery = []string{"g1.jpg", "g2.jpg", "g3.jpg"}

type vehicleRepo map[types.ID]fleet.Vehicle

func (m vehicleRepo) Get(_ context.Context, id types.ID) (*fleet.Vehicle, error) {
	v, ok := m[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &v, nil
}

type staticSettings struct{ s *pricing.Settings }

func (p staticSettings) Current(context.Context) (*pricing.Settings, error) {
	if p.s == nil {
		return nil, pricing.ErrConfigurationMissing
	}
	cp := *p.s
	return &cp, nil
}

type overrideRepo map[types.ID]*pricing.DriverOverride

func (m overrideRepo) Override(_ context.Context, id types.ID) (*pricing.DriverOverride, error) {
	return m[id], nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []Change
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, c Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return p.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testSettings() *pricing.Settings {
	return &pricing.Settings{
		BaseRatePerKm:     dec("1.5"),
		Tier1Multiplier:   dec("1.5"),
		Tier2Multiplier:   dec("1.3"),
		Tier3Multiplier:   dec("1.2"),
		Tier4Multiplier:   dec("1.0"),
		MinimumFare:       dec("30"),
		MaxRatePerKm:      dec("5"),
		OverridesEnabled:  true,
		CommissionPercent: dec("30"),
		Currency:          "EUR",
	}
}

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc       *Service
	repo      *memRepo
	publisher *recordingPublisher
}

type harnessOpts struct {
	legKm     float64
	settings  *pricing.Settings
	overrides  overrideRepo
	repo       Repository
	noSettings bool
}

func newHarness(t *testing.T, opts harnessOpts) *harness {
	t.Helper()
	if opts.legKm == 0 {
		opts.legKm = 100
	}
	if opts.settings == nil && !opts.noSettings {
		opts.settings = testSettings()
	}
	locs := locRepo{
		"ath": {ID: "ath", Active: true, Position: types.Point{Lat: 37.98, Lng: 23.72}},
		"cor": {ID: "cor", Active: true, Position: types.Point{Lat: 37.94, Lng: 22.93}},
		"nfp": {ID: "nfp", Active: true, Position: types.Point{Lat: 37.57, Lng: 22.80}},
	}
	vehicles := vehicleRepo{
		"v-1":     {ID: "v-1", DriverID: "drv-1", Seats: 4, Luggage: 3, Active: true, VerificationStatus: fleet.VerificationApproved, MainPhoto: "m.jpg", Gallery: gallery},
		"v-2":     {ID: "v-2", DriverID: "drv-2", Seats: 7, Luggage: 6, Active: true, VerificationStatus: fleet.VerificationApproved, MainPhoto: "m.jpg", Gallery: gallery},
		"v-off":   {ID: "v-off", DriverID: "drv-3", Seats: 4, Luggage: 3, Active: false, VerificationStatus: fleet.VerificationApproved, MainPhoto: "m.jpg", Gallery: gallery},
		"v-unver": {ID: "v-unver", DriverID: "drv-4", Seats: 4, Luggage: 3, Active: true, VerificationStatus: fleet.VerificationPending, MainPhoto: "m.jpg", Gallery: gallery},
	}

	mem := newMemRepo()
	var repo Repository = mem
	if opts.repo != nil {
		repo = opts.repo
	}
	pub := &recordingPublisher{}
	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := NewService(Deps{
		Repo:      repo,
		Locations: location.NewService(locs, legMeter(opts.legKm)),
		Vehicles:  vehicles,
		Settings:  staticSettings{opts.settings},
		Overrides: opts.overrides,
		Publisher: pub,
		Validate:  validator.New(),
		Log:       log,
		Timezone:  time.UTC,
	})
	svc.now = func() time.Time { return testNow }
	return &harness{svc: svc, repo: mem, publisher: pub}
}

func validCreate() CreateCommand {
	return CreateCommand{
		PassengerID: "pax-1",
		Contact: Contact{
			Name:  "Eleni Papadopoulou",
			Email: "eleni@example.com",
			Phone: "+30 210 1234567",
		},
		PickupID:   "ath",
		DropoffID:  "nfp",
		Date:       "2026-10-20",
		Time:       "08:30",
		Passengers: 2,
		Luggage:    2,
		VehicleID:  "v-1",
	}
}

func mustCreate(t *testing.T, h *harness, cmd CreateCommand) *Booking {
	t.Helper()
	b, err := h.svc.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

var (
	passenger = Actor{Role: RolePassenger, ID: "pax-1"}
	driver1   = Actor{Role: RoleDriver, ID: "drv-1"}
	driver2   = Actor{Role: RoleDriver, ID: "drv-2"}
	admin     = Actor{Role: RoleAdmin, ID: "adm-1"}
)
