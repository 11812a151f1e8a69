package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mrimoveis/brokersite/internal/auth"
	"github.com/mrimoveis/brokersite/internal/chat"
	"github.com/mrimoveis/brokersite/internal/service"
	"github.com/mrimoveis/brokersite/internal/store"
)

// Machine-readable error codes the SPA branches on.
const (
	codeValidationFailed    = "validation_failed"
	codeAuthFailed          = "auth_failed"
	codeAlreadyConfigured   = "already_configured"
	codeNotConfigured       = "not_configured"
	codeCredentialMissing   = "credential_missing"
	codeProviderAuth        = "provider_auth"
	codeProviderUnavailable = "provider_unavailable"
	codeStorageCorrupt      = "storage_corrupt"
	codeNotFound            = "not_found"
	codeInternal            = "internal_error"
)

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	respondJSON(w, status, errorBody{Code: code, Error: msg})
}

// respondServiceError maps domain failures onto the error taxonomy: a
// validation failure aborts with 400 and no state change, auth denials are
// 401/403, a missing assistant credential is distinguished from a generic
// provider failure, and a corrupt stored record is surfaced rather than
// papered over.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, codeAuthFailed, err.Error())
	case errors.Is(err, service.ErrNoImages),
		errors.Is(err, service.ErrTooManyImages),
		errors.Is(err, service.ErrNoImage),
		errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidType),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, auth.ErrMissingField):
		respondError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	case errors.Is(err, auth.ErrWrongInstallKey):
		respondError(w, http.StatusForbidden, codeAuthFailed, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, codeAuthFailed, err.Error())
	case errors.Is(err, auth.ErrAdminExists):
		respondError(w, http.StatusConflict, codeAlreadyConfigured, err.Error())
	case errors.Is(err, auth.ErrNotConfigured):
		respondError(w, http.StatusConflict, codeNotConfigured, err.Error())
	case errors.Is(err, chat.ErrNoCredential):
		respondError(w, http.StatusServiceUnavailable, codeCredentialMissing, err.Error())
	case errors.Is(err, chat.ErrProviderAuth):
		respondError(w, http.StatusBadGateway, codeProviderAuth, err.Error())
	case errors.Is(err, chat.ErrProviderUnavailable):
		respondError(w, http.StatusBadGateway, codeProviderUnavailable, err.Error())
	case errors.Is(err, store.ErrCorruptRecord):
		logger.Error("corrupt stored record", "error", err)
		respondError(w, http.StatusInternalServerError, codeStorageCorrupt, "stored record is corrupt")
	default:
		logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
