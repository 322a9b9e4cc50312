// README: Shared identifiers, coordinates and error kinds.
package types

import "errors"

type ID string

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)
