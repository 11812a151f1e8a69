package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrimoveis/brokersite/internal/auth"
	"github.com/mrimoveis/brokersite/internal/domain"
	"github.com/mrimoveis/brokersite/internal/photostore"
	"github.com/mrimoveis/brokersite/internal/store"
)

var (
	ErrUnauthenticated = errors.New("admin session required")
	ErrNoImages        = errors.New("a listing needs at least one image")
	ErrTooManyImages   = fmt.Errorf("a listing holds at most %d images", domain.MaxListingImages)
	ErrNoImage         = errors.New("a category needs an image")
	ErrMissingField    = errors.New("required field is empty")
	ErrInvalidType     = errors.New("listing type must be sale or rent")
	ErrInvalidStatus   = errors.New("status must be available, sold or rented")
)

const heroImageKey = store.KeyHeroImage

// AdminService is the mutating command surface. Every command demands an
// authenticated principal in ctx and writes through to the store before
// returning.
type AdminService struct {
	listings   listingRepository
	categories categoryRepository
	settings   settingsRepository
	photos     photostore.PhotoStore
	logger     *slog.Logger
}

func NewAdminService(
	listings listingRepository,
	categories categoryRepository,
	settings settingsRepository,
	photos photostore.PhotoStore,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		listings:   listings,
		categories: categories,
		settings:   settings,
		photos:     photos,
		logger:     logger,
	}
}

// AddListingInput carries everything an admin supplies for a new listing.
// ID, Image, Status, Featured and CreatedAt are assigned here, not by the
// caller.
type AddListingInput struct {
	Title       string             `json:"title"`
	Location    string             `json:"location"`
	Description string             `json:"description"`
	Price       string             `json:"price"`
	Beds        int                `json:"beds"`
	Baths       int                `json:"baths"`
	Sqft        int                `json:"sqft"`
	Images      []string           `json:"images"`
	Type        domain.ListingType `json:"type"`
	Category    string             `json:"category"`
}

func (s *AdminService) AddListing(ctx context.Context, in AddListingInput) (*domain.Listing, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title", ErrMissingField)
	}
	if len(in.Images) == 0 {
		return nil, ErrNoImages
	}
	if len(in.Images) > domain.MaxListingImages {
		return nil, ErrTooManyImages
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidType
	}

	l := &domain.Listing{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
		Price:       in.Price,
		Beds:        max(in.Beds, 0),
		Baths:       max(in.Baths, 0),
		Sqft:        max(in.Sqft, 0),
		Image:       in.Images[0],
		Images:      in.Images,
		Type:        in.Type,
		Status:      domain.StatusAvailable,
		Featured:    true,
		Category:    in.Category,
		CreatedAt:   time.Now(),
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, err
	}
	s.logger.Info("listing added", "id", l.ID, "title", l.Title, "category", l.Category)
	return l, nil
}

// RemoveListing deletes a listing. A missing id is a no-op, not an error;
// calling it twice is the same as calling it once.
func (s *AdminService) RemoveListing(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing == nil {
		return nil
	}

	if _, err := s.listings.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("listing removed", "id", id)

	// Best effort: uploaded photo files are orphaned otherwise. External
	// URLs carry no storage key and are skipped.
	for _, ref := range listing.Images {
		if key, ok := photostore.KeyFromRef(ref); ok {
			if err := s.photos.Delete(ctx, key); err != nil {
				s.logger.Error("failed to delete listing photo", "key", key, "error", err)
			}
		}
	}
	return nil
}

func (s *AdminService) SetStatus(ctx context.Context, id string, status domain.ListingStatus) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	found, err := s.listings.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if found {
		s.logger.Info("listing status changed", "id", id, "status", status)
	}
	return nil
}

func (s *AdminService) ToggleFeatured(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	_, err := s.listings.ToggleFeatured(ctx, id)
	return err
}

func (s *AdminService) AddCategory(ctx context.Context, name, image string) (*domain.Category, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	if image == "" {
		return nil, ErrNoImage
	}

	category, err := s.categories.Create(ctx, name, image)
	if err != nil {
		return nil, err
	}
	s.logger.Info("category added", "id", category.ID, "name", category.Name)
	return category, nil
}

// RemoveCategory deletes a category by id. Listings that reference the name
// keep it; they just stop matching any category count.
func (s *AdminService) RemoveCategory(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	found, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if found {
		s.logger.Info("category removed", "id", id)
	}
	return nil
}

// SetHeroImage replaces the homepage banner. An empty ref resets to the
// built-in default rather than storing an empty string.
func (s *AdminService) SetHeroImage(ctx context.Context, ref string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if ref == "" {
		ref = domain.DefaultHeroImage
	}
	if err := s.settings.Set(ctx, heroImageKey, ref); err != nil {
		return err
	}
	s.logger.Info("hero image updated")
	return nil
}

func requireAdmin(ctx context.Context) error {
	if _, ok := auth.FromContext(ctx); !ok {
		return ErrUnauthenticated
	}
	return nil
}
