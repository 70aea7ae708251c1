package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/lendshare/internal/model"
)

// seedProduct creates a category and a product with the given total and
// available quantities.
func seedProduct(t *testing.T, database *sql.DB, name string, total, available int) *model.Product {
	t.Helper()
	ctx := context.Background()

	cat, err := GetCategory(ctx, database, 1)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if cat == nil {
		cat, err = CreateCategory(ctx, database, "Tools", "")
		if err != nil {
			t.Fatalf("CreateCategory: %v", err)
		}
	}

	p, err := CreateProduct(ctx, database, &model.Product{
		Name:              name,
		CategoryID:        cat.ID,
		TotalQuantity:     total,
		AvailableQuantity: available,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return p
}

func seedUser(t *testing.T, database *sql.DB, email string) *model.User {
	t.Helper()

	u, err := CreateUser(context.Background(), database, email, "Ana", "Novak", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func mustProduct(t *testing.T, database *sql.DB, id int64) *model.Product {
	t.Helper()

	p, err := GetProduct(context.Background(), database, id)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p == nil {
		t.Fatalf("product %d not found", id)
	}
	return p
}

// seedReservation creates a reservation and moves it to status unless status
// is pending.
func seedReservation(t *testing.T, database *sql.DB, userID, productID int64, status model.Status) *model.Reservation {
	t.Helper()
	ctx := context.Background()

	r, err := CreateReservation(ctx, database, userID, productID)
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if status != model.StatusPending {
		if err := UpdateReservationStatus(ctx, database, r.ID, status); err != nil {
			t.Fatalf("UpdateReservationStatus(%s): %v", status, err)
		}
		r.Status = status
	}
	return r
}
