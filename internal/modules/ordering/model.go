// README: Orderable catalogue entries (tours, transfers).
package ordering

import (
	"errors"

	"roadbook/internal/types"
)

var ErrClosed = errors.New("ordering service is closed")

type EntityType string

const (
	EntityTours     EntityType = "tours"
	EntityTransfers EntityType = "transfers"
)

// tables maps each orderable entity type to its table. Only these names are
// ever interpolated into SQL.
var tables = map[EntityType]string{
	EntityTours:     "tours",
	EntityTransfers: "transfers",
}

func (t EntityType) Valid() bool {
	_, ok := tables[t]
	return ok
}

type Item struct {
	ID           types.ID `json:"id"`
	Title        string   `json:"title"`
	DisplayOrder int      `json:"display_order"`
}
