package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrimoveis/brokersite/internal/domain"
)

type ListingStore struct {
	db *sql.DB
}

func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

// Create inserts the listing and its image rows in one transaction. The
// caller is responsible for assigning ID, Image, Status and CreatedAt.
func (s *ListingStore) Create(ctx context.Context, l *domain.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to roll back listing create", "error", err)
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO listings (id, title, location, description, price, beds, baths, sqft,
			image, type, status, featured, category, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.Title, l.Location, l.Description, l.Price, l.Beds, l.Baths, l.Sqft,
		l.Image, l.Type, l.Status, l.Featured, l.Category, l.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	for i, ref := range l.Images {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO listing_images (listing_id, position, storage_ref) VALUES (?, ?, ?)
		`, l.ID, i, ref)
		if err != nil {
			return fmt.Errorf("failed to create listing image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit listing create: %w", err)
	}
	return nil
}

func (s *ListingStore) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	l := &domain.Listing{}
	var createdNS int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, location, description, price, beds, baths, sqft,
			image, type, status, featured, category, created_at_ns
		FROM listings WHERE id = ?
	`, id).Scan(&l.ID, &l.Title, &l.Location, &l.Description, &l.Price, &l.Beds, &l.Baths,
		&l.Sqft, &l.Image, &l.Type, &l.Status, &l.Featured, &l.Category, &createdNS)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	l.CreatedAt = time.Unix(0, createdNS)

	if l.Images, err = s.imagesFor(ctx, l.ID); err != nil {
		return nil, err
	}
	return l, nil
}

// List returns every listing, newest first.
func (s *ListingStore) List(ctx context.Context) ([]*domain.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, location, description, price, beds, baths, sqft,
			image, type, status, featured, category, created_at_ns
		FROM listings ORDER BY created_at_ns DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var listings []*domain.Listing
	for rows.Next() {
		l := &domain.Listing{}
		var createdNS int64
		if err := rows.Scan(&l.ID, &l.Title, &l.Location, &l.Description, &l.Price, &l.Beds,
			&l.Baths, &l.Sqft, &l.Image, &l.Type, &l.Status, &l.Featured, &l.Category, &createdNS); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		l.CreatedAt = time.Unix(0, createdNS)
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	images, err := s.allImages(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		l.Images = images[l.ID]
	}
	return listings, nil
}

// UpdateStatus sets the status of a listing. Returns false when no listing
// has that id.
func (s *ListingStore) UpdateStatus(ctx context.Context, id string, status domain.ListingStatus) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE listings SET status = ? WHERE id = ?
	`, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to update status: %w", err)
	}
	return affected(result)
}

// ToggleFeatured flips the featured flag. Returns false when no listing has
// that id.
func (s *ListingStore) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE listings SET featured = CASE WHEN featured = 0 THEN 1 ELSE 0 END WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle featured: %w", err)
	}
	return affected(result)
}

// Delete removes a listing and its image rows. Returns false when no
// listing has that id.
func (s *ListingStore) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to roll back listing delete", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_images WHERE listing_id = ?`, id); err != nil {
		return false, fmt.Errorf("failed to delete listing images: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete listing: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit listing delete: %w", err)
	}
	return affected(result)
}

func (s *ListingStore) imagesFor(ctx context.Context, listingID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT storage_ref FROM listing_images WHERE listing_id = ? ORDER BY position ASC
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listing images: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan listing image: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing images: %w", err)
	}
	return refs, nil
}

func (s *ListingStore) allImages(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT listing_id, storage_ref FROM listing_images ORDER BY listing_id, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list listing images: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	images := make(map[string][]string)
	for rows.Next() {
		var id, ref string
		if err := rows.Scan(&id, &ref); err != nil {
			return nil, fmt.Errorf("failed to scan listing image: %w", err)
		}
		images[id] = append(images[id], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing images: %w", err)
	}
	return images, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
