package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lendshare/internal/model"
)

// CreateCategory creates a new category.
func CreateCategory(ctx context.Context, db DBTX, name, imageURL string) (*model.Category, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (name, image_url) VALUES (?, ?)`,
		name, nullString(imageURL),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating category: %q already exists: %w", name, model.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}

	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db DBTX, id int64) (*model.Category, error) {
	c := &model.Category{}
	var imageURL sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, image_url, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &imageURL, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	c.ImageURL = imageURL.String
	return c, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db DBTX) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, image_url, created_at FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var imageURL sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &imageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.ImageURL = imageURL.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
