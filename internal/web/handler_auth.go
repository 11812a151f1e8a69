package web

import "net/http"

// handleSession tells the SPA which login UI to show: the first-run setup
// form while no admin exists, the login form otherwise, and whether the
// token it holds is still good.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	configured, err := s.auth.Configured(r.Context())
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	authenticated := false
	if token := bearerToken(r); token != "" {
		if _, err := s.auth.Verify(token); err == nil {
			authenticated = true
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{
		"configured":    configured,
		"authenticated": authenticated,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		InstallKey string `json:"install_key"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	if err := s.auth.Register(r.Context(), req.Username, req.Password, req.InstallKey); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	s.logger.Info("admin registered", "username", req.Username)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
