package model

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a reservation.
type Status string

// Reservation statuses.
const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every known status.
var Statuses = []Status{StatusPending, StatusAccepted, StatusRejected, StatusReturned, StatusCancelled}

// transitions holds the legal targets for each status. A status with no
// entry is terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted: {StatusRejected, StatusReturned, StatusCancelled},
	StatusRejected: {StatusPending, StatusAccepted},
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown reservation status %q", ErrInvalidInput, s)
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Active reports whether a reservation in status s still claims the product.
// Products with active reservations cannot be deleted.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusAccepted
}

// CanTransition reports whether moving from s to next is allowed by the
// transition table. Staying in the same status is always allowed.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Reservation is a user's request to borrow one unit of a product.
type Reservation struct {
	ID              int64      `json:"id"`
	ProductID       int64      `json:"product_id"`
	UserID          int64      `json:"user_id"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`

	// Joined fields (not always populated).
	ProductName   string `json:"product_name,omitempty"`
	ProductImage  string `json:"product_image_url,omitempty"`
	UserFirstName string `json:"user_first_name,omitempty"`
	UserLastName  string `json:"user_last_name,omitempty"`
	UserEmail     string `json:"user_email,omitempty"`
}

// ReservationFilter narrows ListReservations. Zero values mean no filter.
type ReservationFilter struct {
	UserID    int64
	ProductID int64
	Status    Status
}

// Adjustment is the inventory side effect of a status transition.
type Adjustment int

// Adjustments.
const (
	AdjustNone Adjustment = iota
	AdjustDecrement
	AdjustIncrement
)

func (a Adjustment) String() string {
	switch a {
	case AdjustDecrement:
		return "decrement"
	case AdjustIncrement:
		return "increment"
	default:
		return "none"
	}
}

// AdjustmentFor returns the quantity side effect of moving from old to next.
// Only crossing into or out of accepted touches inventory.
func AdjustmentFor(old, next Status) Adjustment {
	switch {
	case old != StatusAccepted && next == StatusAccepted:
		return AdjustDecrement
	case old == StatusAccepted && next != StatusAccepted:
		return AdjustIncrement
	default:
		return AdjustNone
	}
}
