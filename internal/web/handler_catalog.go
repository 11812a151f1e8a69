package web

import (
	"net/http"

	"github.com/mrimoveis/brokersite/internal/domain"
)

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	var (
		listings []*domain.Listing
		err      error
	)

	switch r.URL.Query().Get("view") {
	case "featured":
		listings, err = s.catalog.FeaturedAvailable(r.Context())
	case "all":
		listings, err = s.catalog.All(r.Context())
	default:
		listings, err = s.catalog.Available(r.Context())
	}
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	if listings == nil {
		listings = []*domain.Listing{}
	}
	respondJSON(w, http.StatusOK, listings)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := s.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	if listing == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "listing not found")
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.Categories(r.Context())
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleGetHero(w http.ResponseWriter, r *http.Request) {
	ref, err := s.catalog.HeroImage(r.Context())
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"image": ref})
}
