package location

import (
	"context"
	"errors"
	"testing"

	"roadbook/internal/types"
)

type memRepo map[types.ID]Location

func (m memRepo) Get(_ context.Context, id types.ID) (*Location, error) {
	l, ok := m[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &l, nil
}

func (m memRepo) ListActive(context.Context) ([]Location, error) {
	var out []Location
	for _, l := range m {
		if l.Active {
			out = append(out, l)
		}
	}
	return out, nil
}

func testRepo() memRepo {
	return memRepo{
		"ath": {ID: "ath", Names: map[string]string{"en": "Athens", "el": "Αθήνα"}, Active: true},
		"nfp": {ID: "nfp", Names: map[string]string{"en": "Nafplio"}, Active: true},
		"old": {ID: "old", Names: map[string]string{"en": "Closed pier"}, Active: false},
	}
}

func TestResolve(t *testing.T) {
	svc := NewService(testRepo(), nil)
	ctx := context.Background()

	locs, err := svc.Resolve(ctx, []types.ID{"nfp", "ath"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 2 || locs[0].ID != "nfp" || locs[1].ID != "ath" {
		t.Fatalf("order not preserved: %+v", locs)
	}

	if _, err := svc.Resolve(ctx, []types.ID{"ath", "missing"}); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Resolve(ctx, []types.ID{"old"}); !errors.Is(err, types.ErrValidation) {
		t.Errorf("inactive id: got %v, want ErrValidation", err)
	}
}

func TestRouteDistanceKm_UsesInjectedMeter(t *testing.T) {
	m := &fixedMeter{}
	svc := NewService(testRepo(), m)

	locs, _ := svc.Resolve(context.Background(), []types.ID{"ath", "nfp", "ath"})
	km, err := svc.RouteDistanceKm(context.Background(), locs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if km != 20 {
		t.Errorf("km = %f, want 20", km)
	}
}

func TestLocationName(t *testing.T) {
	l := testRepo()["ath"]
	if got := l.Name("el"); got != "Αθήνα" {
		t.Errorf("Name(el) = %q", got)
	}
	if got := l.Name("de"); got != "Athens" {
		t.Errorf("Name(de) = %q, want en fallback", got)
	}
	if got := (Location{ID: "x"}).Name("en"); got != "x" {
		t.Errorf("Name on empty names = %q, want id", got)
	}
}
