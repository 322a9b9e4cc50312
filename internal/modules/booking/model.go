// README: Booking aggregate, status flow and actor rules.
package booking

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"roadbook/internal/types"
)

var (
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrConflict          = errors.New("booking state conflict")
	ErrForbidden         = errors.New("actor not allowed on this booking")
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type Action string

const (
	ActionCreate   Action = "create"
	ActionConfirm  Action = "confirm"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionConfirm, ActionReject, ActionCancel, ActionComplete:
		return true
	}
	return false
}

type ActorRole string

const (
	RolePassenger ActorRole = "passenger"
	RoleDriver    ActorRole = "driver"
	RoleAdmin     ActorRole = "admin"
)

// ParseRole maps an auth claim to a role. Anything unknown is a passenger.
func ParseRole(claim string) ActorRole {
	switch ActorRole(claim) {
	case RoleDriver:
		return RoleDriver
	case RoleAdmin:
		return RoleAdmin
	}
	return RolePassenger
}

type Actor struct {
	Role ActorRole
	ID   types.ID
}

type Contact struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=6,max=32"`
	Notes string `json:"notes,omitempty" validate:"max=1000"`
}

type Booking struct {
	ID          types.ID  `json:"id"`
	PassengerID *types.ID `json:"passenger_id,omitempty"`
	Contact     Contact   `json:"contact"`

	PickupID    types.ID      `json:"pickup_id"`
	DropoffID   types.ID      `json:"dropoff_id"`
	StopIDs     []types.ID    `json:"stop_ids"`
	Pickup      types.Point   `json:"pickup"`
	Dropoff     types.Point   `json:"dropoff"`
	StopPoints  []types.Point `json:"stop_points"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Passengers  int           `json:"passengers"`
	LuggageBags int           `json:"luggage"`

	VehicleID *types.ID `json:"vehicle_id,omitempty"`
	DriverID  *types.ID `json:"driver_id,omitempty"`

	Status        Status `json:"status"`
	StatusVersion int    `json:"status_version"`

	DistanceKm         float64         `json:"distance_km"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	DriverEarnings     decimal.Decimal `json:"driver_earnings"`
	AdminCommission    decimal.Decimal `json:"admin_commission"`
	CommissionPercent  decimal.Decimal `json:"commission_percent"`
	MinimumFareApplied bool            `json:"minimum_fare_applied"`
	Currency           string          `json:"currency"`

	RejectionReason    *string    `json:"rejection_reason,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CancelledBy        *ActorRole `json:"cancelled_by,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// DisplayPrice is the total rounded to a whole currency unit.
func (b *Booking) DisplayPrice() int64 {
	return types.NewMoney(b.TotalPrice, b.Currency).Display()
}

// Event is one row of the append-only audit trail.
type Event struct {
	ID         int64     `json:"id"`
	BookingID  types.ID  `json:"booking_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Action     Action    `json:"action"`
	ActorRole  ActorRole `json:"actor_role"`
	ActorID    *types.ID `json:"actor_id,omitempty"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type reasonRule int

const (
	reasonNone reasonRule = iota
	reasonRequired
	reasonUnlessPassenger
)

type rule struct {
	to     Status
	roles  []ActorRole
	reason reasonRule
}

// AllowedTransitions represents the booking state flow as code.
var AllowedTransitions = map[Status]map[Action]rule{
	StatusPending: {
		ActionConfirm: {to: StatusConfirmed, roles: []ActorRole{RoleDriver, RoleAdmin}},
		ActionReject:  {to: StatusRejected, roles: []ActorRole{RoleDriver}, reason: reasonRequired},
		ActionCancel:  {to: StatusCancelled, roles: []ActorRole{RolePassenger, RoleAdmin}, reason: reasonUnlessPassenger},
	},
	StatusConfirmed: {
		ActionReject:   {to: StatusRejected, roles: []ActorRole{RoleDriver}, reason: reasonRequired},
		ActionCancel:   {to: StatusCancelled, roles: []ActorRole{RolePassenger, RoleAdmin}, reason: reasonUnlessPassenger},
		ActionComplete: {to: StatusCompleted, roles: []ActorRole{RoleAdmin}},
	},
}

// CanTransition reports whether action moves a booking out of from, and to
// which status.
func CanTransition(from Status, action Action) (Status, bool) {
	r, ok := AllowedTransitions[from][action]
	if !ok {
		return "", false
	}
	return r.to, true
}

func (r rule) allows(role ActorRole) bool {
	for _, x := range r.roles {
		if x == role {
			return true
		}
	}
	return false
}
