package model

import "time"

// Product is a lendable item type. Quantities count units, not individual
// tracked objects.
type Product struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	CategoryID        int64      `json:"category_id"`
	ImageURL          string     `json:"image_url,omitempty"`
	Featured          bool       `json:"featured"`
	TotalQuantity     int        `json:"total_quantity"`
	AvailableQuantity int        `json:"available_quantity"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
}

// ProductFilter narrows ListProducts. Zero values mean no filter.
type ProductFilter struct {
	Featured   bool
	CategoryID int64
}

// ClampAvailable returns available limited to [0, total].
func ClampAvailable(available, total int) int {
	if available < 0 {
		return 0
	}
	if available > total {
		return total
	}
	return available
}

// QuantityCorrection records one product whose available quantity was
// recomputed by a consistency sweep.
type QuantityCorrection struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Before    int    `json:"before"`
	After     int    `json:"after"`
}
