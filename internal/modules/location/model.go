// README: Location catalogue entries referenced by searches and bookings.
package location

import (
	"roadbook/internal/types"
)

// Location is a pickup, drop-off or stop point. Names are keyed by locale.
type Location struct {
	ID       types.ID          `json:"id"`
	Names    map[string]string `json:"names"`
	Position types.Point       `json:"position"`
	Active   bool              `json:"active"`
	Priority int               `json:"priority"`
}

// Name returns the name for locale, falling back to "en" and then any name.
func (l Location) Name(locale string) string {
	if n, ok := l.Names[locale]; ok && n != "" {
		return n
	}
	if n, ok := l.Names["en"]; ok && n != "" {
		return n
	}
	for _, n := range l.Names {
		return n
	}
	return string(l.ID)
}
