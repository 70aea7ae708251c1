package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/lendshare/internal/model"
	"github.com/erazemk/lendshare/internal/reservation"
	"github.com/erazemk/lendshare/internal/store"
)

// ReservationsHandler handles reservation endpoints.
type ReservationsHandler struct {
	DB     *sql.DB
	Engine *reservation.Engine
}

type createReservationRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	UserID    int64 `json:"user_id" validate:"omitempty,gt=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// List handles GET /api/reservations. Admins may filter by ?user_id,
// ?product_id and ?status; everyone else only sees their own reservations.
func (h *ReservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var filter model.ReservationFilter
	var err error
	if filter.UserID, err = queryID(r, "user_id"); err != nil {
		writeError(w, err, "invalid user_id")
		return
	}
	if filter.ProductID, err = queryID(r, "product_id"); err != nil {
		writeError(w, err, "invalid product_id")
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		if filter.Status, err = model.ParseStatus(raw); err != nil {
			writeError(w, err, "invalid status")
			return
		}
	}
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		filter.UserID = claims.UserID
	}

	reservations, err := store.ListReservations(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, err, "failed to list reservations")
		return
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	jsonResponse(w, http.StatusOK, reservations)
}

// Get handles GET /api/reservations/{id}.
func (h *ReservationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, "invalid reservation id")
		return
	}

	res, err := store.GetReservation(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get reservation")
		return
	}

	claims := GetClaims(r.Context())
	if res == nil || (res.UserID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin)) {
		jsonError(w, http.StatusNotFound, "reservation not found")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Create handles POST /api/reservations. Members reserve for themselves;
// admins may reserve on behalf of another user.
func (h *ReservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	userID := claims.UserID
	if req.UserID != 0 && req.UserID != claims.UserID {
		if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
			writeError(w, fmt.Errorf("only admins may reserve for another user: %w", model.ErrForbidden), "")
			return
		}
		userID = req.UserID
	}

	var res *model.Reservation
	err := store.WithTx(r.Context(), h.DB, func(tx *sql.Tx) error {
		var err error
		res, err = store.CreateReservation(r.Context(), tx, userID, req.ProductID)
		return err
	})
	if err != nil {
		writeError(w, err, "failed to create reservation")
		return
	}

	slog.Info("reservation created", "user", claims.Email, "reservation", res.ID, "product", res.ProductID, "for", userID)
	jsonOK(w, http.StatusCreated, "reservation created", map[string]any{"reservation": res})
}

// UpdateStatus handles PUT /api/reservations/{id}/status.
func (h *ReservationsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, "invalid reservation id")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}

	result, err := h.Engine.Transition(r.Context(), callerFrom(GetClaims(r.Context())), id, req.Status)
	if err != nil {
		writeError(w, err, "failed to update reservation status")
		return
	}

	message := "reservation status updated"
	if !result.Changed() {
		message = "reservation status unchanged"
	}
	extra := map[string]any{
		"reservation": result.Reservation,
		"old_status":  result.OldStatus,
		"adjustment":  result.Adjustment.String(),
	}
	if result.Adjustment != model.AdjustNone {
		extra["available_quantity"] = result.Available
	}
	jsonOK(w, http.StatusOK, message, extra)
}
