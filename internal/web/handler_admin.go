package web

import (
	"net/http"

	"github.com/mrimoveis/brokersite/internal/domain"
	"github.com/mrimoveis/brokersite/internal/service"
)

func (s *Server) handleAddListing(w http.ResponseWriter, r *http.Request) {
	var in service.AddListingInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	listing, err := s.admin.AddListing(r.Context(), in)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, listing)
}

func (s *Server) handleRemoveListing(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.RemoveListing(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.ListingStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	if err := s.admin.SetStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleFeatured(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.ToggleFeatured(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	category, err := s.admin.AddCategory(r.Context(), req.Name, req.Image)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.RemoveCategory(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetHero(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	if err := s.admin.SetHeroImage(r.Context(), req.Image); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
