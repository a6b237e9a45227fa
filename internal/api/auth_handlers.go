package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mgtools/nexo/internal/auth"
	"github.com/mgtools/nexo/internal/store"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Email e senha são obrigatórios")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Email e senha são obrigatórios")
		return
	}

	token, user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.errorResponse(w, http.StatusUnauthorized, "Credenciais inválidas")
			return
		}
		s.logger.Error("login failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao fazer login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"success": true,
		"token":   token,
		"user": map[string]any{
			"id":    user.ID,
			"email": user.Email,
			"nome":  user.Nome,
			"role":  user.Role,
		},
	}, s.logger)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		s.auth.Logout(token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{"success": true}, s.logger)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := s.currentUser(r)
	if !ok {
		s.errorResponse(w, http.StatusUnauthorized, "Não autenticado")
		return
	}

	// Re-read from the store so a deleted account stops resolving even with
	// a live session.
	user, err := s.store.UserByID(r.Context(), sessionUser.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		s.logger.Error("failed to load user", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar usuário")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"id":          user.ID,
		"email":       user.Email,
		"nome":        user.Nome,
		"role":        user.Role,
		"vendedor_id": user.VendedorID,
	}, s.logger)
}
