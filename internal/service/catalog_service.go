package service

import (
	"context"
	"fmt"

	"github.com/mrimoveis/brokersite/internal/domain"
)

// listingRepository is the subset of store.ListingStore the services require.
type listingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	List(ctx context.Context) ([]*domain.Listing, error)
	UpdateStatus(ctx context.Context, id string, status domain.ListingStatus) (bool, error)
	ToggleFeatured(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// categoryRepository is the subset of store.CategoryStore the services require.
type categoryRepository interface {
	Create(ctx context.Context, name, image string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// settingsRepository is the subset of store.SettingsStore the services require.
type settingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// CatalogService exposes the public read views. Every view is recomputed
// from the current collection on each call; nothing here mutates state.
type CatalogService struct {
	listings   listingRepository
	categories categoryRepository
	settings   settingsRepository
}

func NewCatalogService(listings listingRepository, categories categoryRepository, settings settingsRepository) *CatalogService {
	return &CatalogService{listings: listings, categories: categories, settings: settings}
}

// FeaturedAvailable returns listings promoted on the homepage: featured and
// still available, newest first.
func (s *CatalogService) FeaturedAvailable(ctx context.Context) ([]*domain.Listing, error) {
	all, err := s.listings.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Listing, 0, len(all))
	for _, l := range all {
		if l.Featured && l.Status == domain.StatusAvailable {
			out = append(out, l)
		}
	}
	return out, nil
}

// Available returns every listing not yet sold or rented, newest first.
func (s *CatalogService) Available(ctx context.Context) ([]*domain.Listing, error) {
	all, err := s.listings.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Listing, 0, len(all))
	for _, l := range all {
		if l.Status == domain.StatusAvailable {
			out = append(out, l)
		}
	}
	return out, nil
}

// All returns the complete collection, newest first. Used by the admin panel.
func (s *CatalogService) All(ctx context.Context) ([]*domain.Listing, error) {
	return s.listings.List(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// CountByCategory returns how many listings carry the given category name.
// Listings whose category was deleted simply match no current name.
func (s *CatalogService) CountByCategory(ctx context.Context, name string) (int, error) {
	all, err := s.listings.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, l := range all {
		if l.Category == name {
			count++
		}
	}
	return count, nil
}

// CategorySummary bundles a category with its current listing count.
type CategorySummary struct {
	*domain.Category
	Count int `json:"count"`
}

func (s *CatalogService) Categories(ctx context.Context) ([]*CategorySummary, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.listings.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, l := range all {
		counts[l.Category]++
	}

	summaries := make([]*CategorySummary, 0, len(categories))
	for _, c := range categories {
		summaries = append(summaries, &CategorySummary{Category: c, Count: counts[c.Name]})
	}
	return summaries, nil
}

// HeroImage returns the homepage banner, falling back to the built-in
// default when none was ever set.
func (s *CatalogService) HeroImage(ctx context.Context) (string, error) {
	ref, ok, err := s.settings.Get(ctx, heroImageKey)
	if err != nil {
		return "", fmt.Errorf("failed to load hero image: %w", err)
	}
	if !ok || ref == "" {
		return domain.DefaultHeroImage, nil
	}
	return ref, nil
}
