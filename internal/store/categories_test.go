package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/lendshare/internal/db"
	"github.com/erazemk/lendshare/internal/model"
)

func TestCategories(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateCategory(ctx, database, "Tools", ""); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	garden, err := CreateCategory(ctx, database, "Garden", "/uploads/categories/g.jpg")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if garden.ImageURL != "/uploads/categories/g.jpg" {
		t.Errorf("unexpected image url %q", garden.ImageURL)
	}

	cats, err := ListCategories(ctx, database)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Garden" || cats[1].Name != "Tools" {
		t.Errorf("expected categories ordered by name, got %+v", cats)
	}

	if _, err := CreateCategory(ctx, database, "Tools", ""); !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate name, got %v", err)
	}

	missing, err := GetCategory(ctx, database, 42)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing category, got %v, %v", missing, err)
	}
}
