package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/lendshare/internal/model"
	"github.com/erazemk/lendshare/internal/store"
)

// ProductsHandler handles product CRUD endpoints.
type ProductsHandler struct {
	DB *sql.DB
}

type createProductRequest struct {
	Name              string `json:"name" validate:"required,max=200"`
	Description       string `json:"description" validate:"max=5000"`
	CategoryID        int64  `json:"category_id" validate:"required,gt=0"`
	ImageURL          string `json:"image_url" validate:"omitempty,max=2048"`
	Featured          bool   `json:"featured"`
	TotalQuantity     int    `json:"total_quantity" validate:"gte=0"`
	AvailableQuantity *int   `json:"available_quantity" validate:"omitempty,gte=0"`
}

type updateProductRequest struct {
	Name              *string `json:"name" validate:"omitnil,min=1,max=200"`
	Description       *string `json:"description" validate:"omitempty,max=5000"`
	CategoryID        *int64  `json:"category_id" validate:"omitempty,gt=0"`
	ImageURL          *string `json:"image_url" validate:"omitempty,max=2048"`
	Featured          *bool   `json:"featured"`
	TotalQuantity     *int    `json:"total_quantity" validate:"omitempty,gte=0"`
	AvailableQuantity *int    `json:"available_quantity" validate:"omitempty,gte=0"`
}

// parseIDs parses a comma-separated list of positive IDs.
func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: invalid product id %q", model.ErrInvalidInput, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// List handles GET /api/products. Supports ?featured=1, ?category=ID and
// ?ids=1,2,3 (returned in the requested order).
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		products []model.Product
		err      error
	)
	if raw := q.Get("ids"); raw != "" {
		ids, perr := parseIDs(raw)
		if perr != nil {
			writeError(w, perr, "invalid ids")
			return
		}
		products, err = store.GetProductsByIDs(r.Context(), h.DB, ids)
	} else {
		categoryID, perr := queryID(r, "category")
		if perr != nil {
			writeError(w, perr, "invalid category")
			return
		}
		featured := q.Get("featured")
		filter := model.ProductFilter{
			Featured:   featured == "1" || featured == "true",
			CategoryID: categoryID,
		}
		products, err = store.ListProducts(r.Context(), h.DB, filter)
	}
	if err != nil {
		writeError(w, err, "failed to list products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	jsonResponse(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}. Deleted products are not found.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, "invalid product id")
		return
	}

	product, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get product")
		return
	}
	if product == nil || product.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}
	jsonResponse(w, http.StatusOK, product)
}

// Create handles POST /api/products. A missing available quantity means
// every unit is available.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}

	available := req.TotalQuantity
	if req.AvailableQuantity != nil {
		available = *req.AvailableQuantity
	}

	product, err := store.CreateProduct(r.Context(), h.DB, &model.Product{
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		ImageURL:          req.ImageURL,
		Featured:          req.Featured,
		TotalQuantity:     req.TotalQuantity,
		AvailableQuantity: available,
	})
	if err != nil {
		writeError(w, err, "failed to create product")
		return
	}

	slog.Info("product created", "user", GetClaims(r.Context()).Email, "product", product.Name, "id", product.ID)
	jsonOK(w, http.StatusCreated, "product created", map[string]any{"product": product})
}

// Update handles PUT /api/products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, "invalid product id")
		return
	}

	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}

	var product *model.Product
	err = store.WithTx(r.Context(), h.DB, func(tx *sql.Tx) error {
		var err error
		product, err = store.UpdateProduct(r.Context(), tx, id, store.ProductUpdate{
			Name:              req.Name,
			Description:       req.Description,
			CategoryID:        req.CategoryID,
			ImageURL:          req.ImageURL,
			Featured:          req.Featured,
			TotalQuantity:     req.TotalQuantity,
			AvailableQuantity: req.AvailableQuantity,
		})
		return err
	})
	if err != nil {
		writeError(w, err, "failed to update product")
		return
	}

	slog.Info("product updated", "user", GetClaims(r.Context()).Email, "product", product.Name, "id", id)
	jsonOK(w, http.StatusOK, "product updated", map[string]any{"product": product})
}

// Delete handles DELETE /api/products/{id}. Fails with 409 while the
// product has pending or accepted reservations.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, "invalid product id")
		return
	}

	err = store.WithTx(r.Context(), h.DB, func(tx *sql.Tx) error {
		return store.DeleteProduct(r.Context(), tx, id)
	})
	if err != nil {
		writeError(w, err, "failed to delete product")
		return
	}

	slog.Info("product deleted", "user", GetClaims(r.Context()).Email, "id", id)
	jsonOK(w, http.StatusOK, "product deleted", nil)
}
