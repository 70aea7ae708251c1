package reservation

import (
	"fmt"

	"github.com/erazemk/lendshare/internal/model"
)

// Policy decides whether a caller may move a reservation to a status.
type Policy interface {
	Authorize(caller Caller, r *model.Reservation, next model.Status) error
}

// Policy names accepted by ParsePolicy.
const (
	PolicyOpen         = "open"
	PolicyAdmin        = "admin"
	PolicyOwnerOrAdmin = "owner-or-admin"
)

// ParsePolicy returns the policy with the given name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case PolicyOpen:
		return OpenPolicy{}, nil
	case PolicyAdmin, "":
		return AdminPolicy{}, nil
	case PolicyOwnerOrAdmin:
		return OwnerOrAdminPolicy{}, nil
	}
	return nil, fmt.Errorf("%w: unknown status policy %q", model.ErrInvalidInput, name)
}

// OpenPolicy lets any authenticated caller change any reservation.
type OpenPolicy struct{}

func (OpenPolicy) Authorize(Caller, *model.Reservation, model.Status) error {
	return nil
}

// AdminPolicy restricts status changes to admins.
type AdminPolicy struct{}

func (AdminPolicy) Authorize(c Caller, _ *model.Reservation, _ model.Status) error {
	if !c.IsAdmin() {
		return fmt.Errorf("only admins may change reservation status: %w", model.ErrForbidden)
	}
	return nil
}

// OwnerOrAdminPolicy lets admins make any change and lets the borrower
// cancel their own reservation.
type OwnerOrAdminPolicy struct{}

func (OwnerOrAdminPolicy) Authorize(c Caller, r *model.Reservation, next model.Status) error {
	if c.IsAdmin() {
		return nil
	}
	if r.UserID != c.UserID {
		return fmt.Errorf("reservation %d belongs to another user: %w", r.ID, model.ErrForbidden)
	}
	if next != model.StatusCancelled {
		return fmt.Errorf("owners may only cancel their reservations: %w", model.ErrForbidden)
	}
	return nil
}
