// Package reservation applies reservation status transitions together with
// the inventory adjustment each transition implies.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/lendshare/internal/model"
)

// Store is the data access the engine needs. Every call made through one
// Store handed out by Repository.InTx belongs to the same transaction.
type Store interface {
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, status model.Status) error
	DecrementAvailable(ctx context.Context, productID int64) (int, error)
	IncrementAvailable(ctx context.Context, productID int64) (int, error)
}

// Repository runs fn in a transaction that commits when fn returns nil and
// rolls back otherwise.
type Repository interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

// Caller identifies who asks for a transition.
type Caller struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the caller has the admin role.
func (c Caller) IsAdmin() bool {
	return model.RoleAtLeast(c.Role, model.RoleAdmin)
}

// Result describes an applied (or idempotent) transition.
type Result struct {
	Reservation *model.Reservation `json:"reservation"`
	OldStatus   model.Status       `json:"old_status"`
	Adjustment  model.Adjustment   `json:"-"`
	// Available is the product's available quantity after the adjustment.
	// It is only set when Adjustment is not AdjustNone.
	Available int `json:"available_quantity,omitempty"`
}

// Changed reports whether the transition wrote anything.
func (r *Result) Changed() bool {
	return r.OldStatus != r.Reservation.Status
}

// Engine validates and applies status transitions.
type Engine struct {
	repo   Repository
	policy Policy
	strict bool
}

// NewEngine creates an engine. With strict set, transitions must follow the
// transition table; otherwise any known status may follow any other. A nil
// policy means AdminPolicy.
func NewEngine(repo Repository, policy Policy, strict bool) *Engine {
	if policy == nil {
		policy = AdminPolicy{}
	}
	return &Engine{repo: repo, policy: policy, strict: strict}
}

// Transition moves reservation id to newStatus on behalf of caller. The
// status write and the quantity adjustment commit together or not at all.
// Moving a reservation into its current status is a no-op.
func (e *Engine) Transition(ctx context.Context, caller Caller, id int64, newStatus string) (*Result, error) {
	next, err := model.ParseStatus(newStatus)
	if err != nil {
		return nil, err
	}

	var res *Result
	err = e.repo.InTx(ctx, func(s Store) error {
		r, err := s.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("reservation %d: %w", id, model.ErrNotFound)
		}

		if err := e.policy.Authorize(caller, r, next); err != nil {
			return err
		}

		old := r.Status
		if old == next {
			res = &Result{Reservation: r, OldStatus: old, Adjustment: model.AdjustNone}
			return nil
		}
		if e.strict && !old.CanTransition(next) {
			return fmt.Errorf("%s to %s: %w", old, next, model.ErrIllegalTransition)
		}

		if err := s.UpdateReservationStatus(ctx, id, next); err != nil {
			return err
		}

		adj := model.AdjustmentFor(old, next)
		var available int
		switch adj {
		case model.AdjustDecrement:
			available, err = s.DecrementAvailable(ctx, r.ProductID)
		case model.AdjustIncrement:
			available, err = s.IncrementAvailable(ctx, r.ProductID)
		}
		if err != nil {
			return err
		}

		updated, err := s.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if updated == nil {
			return fmt.Errorf("reservation %d vanished: %w", id, model.ErrNotFound)
		}

		res = &Result{Reservation: updated, OldStatus: old, Adjustment: adj, Available: available}
		return nil
	})
	if err != nil {
		err = classify(err)
		if errors.Is(err, model.ErrStoreFailure) {
			slog.Error("reservation transition failed", "reservation", id, "status", next, "error", err)
		}
		return nil, err
	}

	if res.Changed() {
		slog.Info("reservation status changed",
			"reservation", id,
			"product", res.Reservation.ProductID,
			"from", res.OldStatus,
			"to", res.Reservation.Status,
			"adjustment", res.Adjustment.String(),
			"by", caller.UserID,
		)
	}
	return res, nil
}

var kinds = []error{
	model.ErrNotFound,
	model.ErrConflict,
	model.ErrInvalidInput,
	model.ErrIllegalTransition,
	model.ErrForbidden,
	model.ErrStoreFailure,
}

// classify marks errors that are not one of the known kinds as store
// failures, keeping the cause in the chain.
func classify(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", model.ErrStoreFailure, err)
}
