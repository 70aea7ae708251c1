package reservation

import (
	"context"
	"database/sql"

	"github.com/erazemk/lendshare/internal/model"
	"github.com/erazemk/lendshare/internal/store"
)

// SQLRepository runs transitions against the SQLite store.
type SQLRepository struct {
	DB *sql.DB
}

// InTx implements Repository.
func (r SQLRepository) InTx(ctx context.Context, fn func(Store) error) error {
	return store.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		return fn(sqlStore{db: tx})
	})
}

type sqlStore struct {
	db store.DBTX
}

func (s sqlStore) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	return store.GetReservation(ctx, s.db, id)
}

func (s sqlStore) UpdateReservationStatus(ctx context.Context, id int64, status model.Status) error {
	return store.UpdateReservationStatus(ctx, s.db, id, status)
}

func (s sqlStore) DecrementAvailable(ctx context.Context, productID int64) (int, error) {
	return store.DecrementAvailable(ctx, s.db, productID)
}

func (s sqlStore) IncrementAvailable(ctx context.Context, productID int64) (int, error) {
	return store.IncrementAvailable(ctx, s.db, productID)
}
