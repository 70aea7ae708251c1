package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/lendshare/internal/model"
)

const productSelect = `SELECT p.id, p.name, p.description, p.category_id, p.image_url, p.featured,
        p.total_quantity, p.available_quantity, p.created_at, p.updated_at, p.deleted_at,
        COALESCE(c.name, '') AS category_name
 FROM products p
 LEFT JOIN categories c ON c.id = p.category_id`

// ProductUpdate holds the fields of a partial product edit. Nil fields keep
// their current value.
type ProductUpdate struct {
	Name              *string
	Description       *string
	CategoryID        *int64
	ImageURL          *string
	Featured          *bool
	TotalQuantity     *int
	AvailableQuantity *int
}

// CreateProduct inserts a product. Available quantity is clamped to
// [0, total].
func CreateProduct(ctx context.Context, db DBTX, p *model.Product) (*model.Product, error) {
	if p.TotalQuantity < 0 {
		return nil, fmt.Errorf("%w: total quantity must not be negative", model.ErrInvalidInput)
	}

	cat, err := GetCategory(ctx, db, p.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %d: %w", p.CategoryID, model.ErrNotFound)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO products (name, description, category_id, image_url, featured, total_quantity, available_quantity)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, nullString(p.Description), p.CategoryID, nullString(p.ImageURL), p.Featured,
		p.TotalQuantity, model.ClampAvailable(p.AvailableQuantity, p.TotalQuantity),
	)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting product id: %w", err)
	}

	return GetProduct(ctx, db, id)
}

// GetProduct returns a product by ID, including soft-deleted products.
func GetProduct(ctx context.Context, db DBTX, id int64) (*model.Product, error) {
	row := db.QueryRowContext(ctx, productSelect+` WHERE p.id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return p, nil
}

// GetProductsByIDs returns the active products with the given IDs in the
// order the IDs were requested. Unknown IDs are skipped.
func GetProductsByIDs(ctx context.Context, db DBTX, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.QueryContext(ctx,
		productSelect+` WHERE p.deleted_at IS NULL AND p.id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	defer rows.Close()

	found, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	var ordered []model.Product
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// ListProducts returns non-deleted products. Featured products are ordered
// newest first, everything else by name.
func ListProducts(ctx context.Context, db DBTX, filter model.ProductFilter) ([]model.Product, error) {
	query := productSelect + ` WHERE p.deleted_at IS NULL`
	var args []any

	if filter.Featured {
		query += ` AND p.featured = 1`
	}
	if filter.CategoryID > 0 {
		query += ` AND p.category_id = ?`
		args = append(args, filter.CategoryID)
	}

	if filter.Featured {
		query += ` ORDER BY p.created_at DESC, p.id DESC`
	} else {
		query += ` ORDER BY p.name, p.id`
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// UpdateProduct applies a partial edit. When quantities change, available is
// re-clamped to the (possibly new) total. Call it inside a transaction so the
// read and the write see the same quantities.
func UpdateProduct(ctx context.Context, db DBTX, id int64, upd ProductUpdate) (*model.Product, error) {
	existing, err := GetProduct(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.DeletedAt != nil {
		return nil, fmt.Errorf("product %d: %w", id, model.ErrNotFound)
	}

	p := *existing
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.CategoryID != nil {
		cat, err := GetCategory(ctx, db, *upd.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, fmt.Errorf("category %d: %w", *upd.CategoryID, model.ErrNotFound)
		}
		p.CategoryID = *upd.CategoryID
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	if upd.Featured != nil {
		p.Featured = *upd.Featured
	}
	if upd.TotalQuantity != nil {
		if *upd.TotalQuantity < 0 {
			return nil, fmt.Errorf("%w: total quantity must not be negative", model.ErrInvalidInput)
		}
		p.TotalQuantity = *upd.TotalQuantity
	}
	if upd.AvailableQuantity != nil {
		if *upd.AvailableQuantity < 0 {
			return nil, fmt.Errorf("%w: available quantity must not be negative", model.ErrInvalidInput)
		}
		p.AvailableQuantity = *upd.AvailableQuantity
	}
	p.AvailableQuantity = model.ClampAvailable(p.AvailableQuantity, p.TotalQuantity)

	_, err = db.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, category_id = ?, image_url = ?, featured = ?,
		        total_quantity = ?, available_quantity = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		p.Name, nullString(p.Description), p.CategoryID, nullString(p.ImageURL), p.Featured,
		p.TotalQuantity, p.AvailableQuantity, id,
	)
	if isCheckViolation(err) {
		return nil, fmt.Errorf("updating product %d: quantity bounds: %w", id, model.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}

	return GetProduct(ctx, db, id)
}

// SetQuantities sets both quantities of a product. Unlike UpdateProduct it
// does not clamp: out-of-range values are rejected.
func SetQuantities(ctx context.Context, db DBTX, id int64, total, available int) (*model.Product, error) {
	if total < 0 || available < 0 || available > total {
		return nil, fmt.Errorf("%w: quantities must satisfy 0 <= available (%d) <= total (%d)",
			model.ErrInvalidInput, available, total)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE products SET total_quantity = ?, available_quantity = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		total, available, id,
	)
	if isCheckViolation(err) {
		return nil, fmt.Errorf("setting quantities of product %d: %w", id, model.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("setting quantities: %w", err)
	}
	if err := requireRow(result, "product", id); err != nil {
		return nil, err
	}

	return GetProduct(ctx, db, id)
}

// DeleteProduct soft-deletes a product. Fails with model.ErrConflict while
// any reservation on it is pending or accepted. Call it inside a transaction
// so the check and the delete see the same state.
func DeleteProduct(ctx context.Context, db DBTX, id int64) error {
	var deleted sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT deleted_at FROM products WHERE id = ?`, id,
	).Scan(&deleted)
	if err == sql.ErrNoRows || (err == nil && deleted.Valid) {
		return fmt.Errorf("product %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking product: %w", err)
	}

	active, err := CountActiveReservations(ctx, db, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return fmt.Errorf("cannot delete product %d: %d active reservations: %w", id, active, model.ErrConflict)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE products SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

// DecrementAvailable takes one unit of a product out of availability in a
// single conditional update. Fails with model.ErrConflict when no unit is
// available and model.ErrNotFound when the product does not exist or was
// deleted. Returns the new available quantity.
func DecrementAvailable(ctx context.Context, db DBTX, productID int64) (int, error) {
	var available int
	err := db.QueryRowContext(ctx,
		`UPDATE products SET available_quantity = available_quantity - 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND available_quantity > 0
		 RETURNING available_quantity`,
		productID,
	).Scan(&available)
	if err == nil {
		return available, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("decrementing available quantity: %w", err)
	}

	exists, err := productExists(ctx, db, productID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("product %d: %w", productID, model.ErrNotFound)
	}
	return 0, fmt.Errorf("product %d has no available units: %w", productID, model.ErrConflict)
}

// IncrementAvailable returns one unit of a product to availability in a
// single update, clamped at the total quantity. Returns the new available
// quantity.
func IncrementAvailable(ctx context.Context, db DBTX, productID int64) (int, error) {
	var available int
	err := db.QueryRowContext(ctx,
		`UPDATE products SET available_quantity = MIN(available_quantity + 1, total_quantity),
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING available_quantity`,
		productID,
	).Scan(&available)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("product %d: %w", productID, model.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing available quantity: %w", err)
	}
	return available, nil
}

// ReconcileAvailability recomputes every product's available quantity as
// total minus its accepted reservations (never below zero) and returns the
// products that changed. Call it inside a transaction.
func ReconcileAvailability(ctx context.Context, db DBTX) ([]model.QuantityCorrection, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT p.id, p.name, p.available_quantity,
		        MAX(p.total_quantity - COUNT(r.id), 0) AS expected
		 FROM products p
		 LEFT JOIN reservations r ON r.product_id = p.id AND r.status = ?
		 WHERE p.deleted_at IS NULL
		 GROUP BY p.id
		 HAVING p.available_quantity != expected
		 ORDER BY p.id`,
		model.StatusAccepted,
	)
	if err != nil {
		return nil, fmt.Errorf("computing expected availability: %w", err)
	}

	var corrections []model.QuantityCorrection
	for rows.Next() {
		var c model.QuantityCorrection
		if err := rows.Scan(&c.ProductID, &c.Name, &c.Before, &c.After); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning availability: %w", err)
		}
		corrections = append(corrections, c)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("reading availability: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading availability: %w", err)
	}

	for _, c := range corrections {
		_, err := db.ExecContext(ctx,
			`UPDATE products SET available_quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			c.After, c.ProductID,
		)
		if err != nil {
			return nil, fmt.Errorf("correcting product %d: %w", c.ProductID, err)
		}
	}
	return corrections, nil
}

func productExists(ctx context.Context, db DBTX, id int64) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking product: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := &model.Product{}
	var description, imageURL sql.NullString
	err := row.Scan(&p.ID, &p.Name, &description, &p.CategoryID, &imageURL, &p.Featured,
		&p.TotalQuantity, &p.AvailableQuantity, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
		&p.CategoryName)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.ImageURL = imageURL.String
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
