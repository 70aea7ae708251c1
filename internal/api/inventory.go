package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lendshare/internal/model"
	"github.com/erazemk/lendshare/internal/store"
)

// InventoryHandler handles admin corrections of product quantities.
type InventoryHandler struct {
	DB *sql.DB
}

type setQuantitiesRequest struct {
	TotalQuantity     *int `json:"total_quantity" validate:"required,gte=0"`
	AvailableQuantity *int `json:"available_quantity" validate:"required,gte=0"`
}

// SetQuantities handles PUT /api/products/{id}/quantities.
func (h *InventoryHandler) SetQuantities(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, "invalid product id")
		return
	}

	var req setQuantitiesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}

	product, err := store.SetQuantities(r.Context(), h.DB, id, *req.TotalQuantity, *req.AvailableQuantity)
	if err != nil {
		writeError(w, err, "failed to set quantities")
		return
	}

	slog.Info("product quantities set",
		"user", GetClaims(r.Context()).Email,
		"product", id,
		"total", product.TotalQuantity,
		"available", product.AvailableQuantity,
	)
	jsonOK(w, http.StatusOK, "quantities updated", map[string]any{"product": product})
}

// Reconcile handles POST /api/products/reconcile. Available quantities are
// recomputed from accepted reservations.
func (h *InventoryHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var corrections []model.QuantityCorrection
	err := store.WithTx(r.Context(), h.DB, func(tx *sql.Tx) error {
		var err error
		corrections, err = store.ReconcileAvailability(r.Context(), tx)
		return err
	})
	if err != nil {
		writeError(w, err, "failed to reconcile availability")
		return
	}
	if corrections == nil {
		corrections = []model.QuantityCorrection{}
	}

	for _, c := range corrections {
		slog.Warn("availability corrected", "product", c.ProductID, "before", c.Before, "after", c.After)
	}
	jsonOK(w, http.StatusOK, "availability reconciled", map[string]any{"corrections": corrections})
}
