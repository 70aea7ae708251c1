package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lendshare/internal/model"
)

const reservationSelect = `SELECT r.id, r.product_id, r.user_id, r.status, r.created_at, r.status_changed_at,
        p.name, p.image_url, u.first_name, u.last_name, u.email
 FROM reservations r
 JOIN products p ON p.id = r.product_id
 JOIN users u ON u.id = r.user_id`

// CreateReservation creates a pending reservation of one unit of a product.
// The user must be active and the product must not be deleted. Call it
// inside a transaction so the checks and the insert see the same state.
func CreateReservation(ctx context.Context, db DBTX, userID, productID int64) (*model.Reservation, error) {
	user, err := GetUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.DeletedAt != nil {
		return nil, fmt.Errorf("user %d: %w", userID, model.ErrNotFound)
	}

	exists, err := productExists(ctx, db, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("product %d: %w", productID, model.ErrNotFound)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO reservations (product_id, user_id, status) VALUES (?, ?, ?)`,
		productID, userID, model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting reservation id: %w", err)
	}

	return GetReservation(ctx, db, id)
}

// GetReservation returns a reservation by ID with its display fields joined.
func GetReservation(ctx context.Context, db DBTX, id int64) (*model.Reservation, error) {
	row := db.QueryRowContext(ctx, reservationSelect+` WHERE r.id = ?`, id)
	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting reservation: %w", err)
	}
	return r, nil
}

// UpdateReservationStatus sets a reservation's status and stamps the change
// time. It does not touch inventory; see the reservation package for that.
func UpdateReservationStatus(ctx context.Context, db DBTX, id int64, status model.Status) error {
	result, err := db.ExecContext(ctx,
		`UPDATE reservations SET status = ?, status_changed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating reservation status: %w", err)
	}
	return requireRow(result, "reservation", id)
}

// ListReservations returns reservations, newest first, optionally filtered.
func ListReservations(ctx context.Context, db DBTX, filter model.ReservationFilter) ([]model.Reservation, error) {
	query := reservationSelect + ` WHERE 1=1`
	var args []any

	if filter.UserID > 0 {
		query += ` AND r.user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.ProductID > 0 {
		query += ` AND r.product_id = ?`
		args = append(args, filter.ProductID)
	}
	if filter.Status != "" {
		query += ` AND r.status = ?`
		args = append(args, filter.Status)
	}

	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}
		reservations = append(reservations, *r)
	}
	return reservations, rows.Err()
}

// CountActiveReservations counts pending and accepted reservations on a product.
func CountActiveReservations(ctx context.Context, db DBTX, productID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE product_id = ? AND status IN (?, ?)`,
		productID, model.StatusPending, model.StatusAccepted,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active reservations: %w", err)
	}
	return count, nil
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	r := &model.Reservation{}
	var image sql.NullString
	err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Status, &r.CreatedAt, &r.StatusChangedAt,
		&r.ProductName, &image, &r.UserFirstName, &r.UserLastName, &r.UserEmail)
	if err != nil {
		return nil, err
	}
	r.ProductImage = image.String
	return r, nil
}
