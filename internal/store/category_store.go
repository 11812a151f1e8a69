package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mrimoveis/brokersite/internal/domain"
)

// seedCategories are installed on first start so the site never opens empty.
// The images are the original site's category photos.
var seedCategories = []domain.Category{
	{Name: "Houses", Image: "https://images.unsplash.com/photo-1518780664697-55e3ad937233?auto=format&fit=crop&q=80&w=400"},
	{Name: "Apartments", Image: "https://images.unsplash.com/photo-1545324418-cc1a3fa10c00?auto=format&fit=crop&q=80&w=400"},
	{Name: "Offices", Image: "https://images.unsplash.com/photo-1497366754035-f200968a6e72?auto=format&fit=crop&q=80&w=400"},
}

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// Create appends the category after all existing ones and returns it.
func (s *CategoryStore) Create(ctx context.Context, name, image string) (*domain.Category, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, image, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM categories))
	`, id, name, image)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *CategoryStore) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c := &domain.Category{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, image, position FROM categories WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Image, &c.Position)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// List returns categories in insertion order, seeds first.
func (s *CategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, image, position FROM categories ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Image, &c.Position); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category. Listings referencing it by name are left alone.
// Returns false when no category has that id.
func (s *CategoryStore) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM categories WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return affected(result)
}

// SeedDefaults installs the built-in categories when the table is empty.
// Safe to call on every start.
func (s *CategoryStore) SeedDefaults(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i, c := range seedCategories {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO categories (id, name, image, position) VALUES (?, ?, ?, ?)
		`, uuid.NewString(), c.Name, c.Image, i+1)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}
	return nil
}
