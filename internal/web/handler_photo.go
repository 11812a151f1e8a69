package web

import (
	"io"
	"net/http"

	"github.com/mrimoveis/brokersite/internal/photostore"
)

// maxUploadBytes bounds the multipart form as a whole; the photostore caps
// the stored file again.
const maxUploadBytes = 12 << 20

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	rc, mimeType, err := s.photos.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			s.logger.Error("failed to close photo", "error", err)
		}
	}()

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Error("failed to write photo", "error", err)
	}
}

// handleUploadPhoto ingests one image file and returns the reference the
// admin panel then attaches to a listing, category or the hero banner.
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	switch kind {
	case photostore.KindListing, photostore.KindCategory, photostore.KindHero:
	default:
		respondError(w, http.StatusBadRequest, codeValidationFailed, "kind must be listing, category or hero")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidationFailed, "photo file is required")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Error("failed to close upload", "error", err)
		}
	}()

	key, err := s.photos.Save(r.Context(), kind, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"key": key,
		"ref": photostore.RefFromKey(key),
	})
}
