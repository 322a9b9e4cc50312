// README: Fleet vehicles, verification states and activation rules.
package fleet

import (
	"errors"
	"time"

	"roadbook/internal/types"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

// MinGalleryPhotos is the gallery size required before a vehicle can go live.
const MinGalleryPhotos = 3

var ErrPhotosRequired = errors.New("vehicle needs a main photo and at least 3 gallery photos")

type Vehicle struct {
	ID                 types.ID           `json:"id"`
	DriverID           types.ID           `json:"driver_id"`
	Label              string             `json:"label"`
	Seats              int                `json:"seats"`
	Luggage            int                `json:"luggage"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Active             bool               `json:"active"`
	MainPhoto          string             `json:"main_photo"`
	Gallery            []string           `json:"gallery"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Eligible reports whether the vehicle may appear in search results.
func (v Vehicle) Eligible() bool {
	return v.Active && v.VerificationStatus == VerificationApproved && v.HasPhotos()
}

// HasPhotos reports whether the activation photo requirement is met.
func (v Vehicle) HasPhotos() bool {
	return v.MainPhoto != "" && len(v.Gallery) >= MinGalleryPhotos
}

// Fits reports whether the vehicle carries the requested load.
// Zero means "not specified".
func (v Vehicle) Fits(passengers, luggage int) bool {
	if passengers > 0 && v.Seats < passengers {
		return false
	}
	if luggage > 0 && v.Luggage < luggage {
		return false
	}
	return true
}
