package web

import (
	"net/http"
	"strings"

	"github.com/mrimoveis/brokersite/internal/domain"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string               `json:"message"`
		History []domain.ChatMessage `json:"history"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, codeValidationFailed, "message is required")
		return
	}

	reply, err := s.assistant.Ask(r.Context(), req.Message, req.History)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
