package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mgtools/nexo/internal/auth"
	"github.com/mgtools/nexo/internal/store"
)

func (s *Server) handleClientes(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	clientes, err := s.store.Clientes(r.Context())
	if err != nil {
		s.logger.Error("failed to list clients", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar clientes")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, clientes, s.logger)
}

func (s *Server) handleClienteGet(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "ID inválido")
		return
	}

	cliente, err := s.store.ClientePorID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Cliente não encontrado")
			return
		}
		s.logger.Error("failed to load client", "error", err, "id", id)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar cliente")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, cliente, s.logger)
}

func (s *Server) handleProdutos(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	produtos, err := s.store.Produtos(r.Context())
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar produtos")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, produtos, s.logger)
}

func (s *Server) handlePedidos(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	pedidos, err := s.store.Pedidos(r.Context(), parseIntParam(r, "limit", 0))
	if err != nil {
		s.logger.Error("failed to list orders", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar pedidos")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, pedidos, s.logger)
}

func (s *Server) handleVendedores(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	vendedores, err := s.store.Vendedores(r.Context())
	if err != nil {
		s.logger.Error("failed to list sellers", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar vendedores")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, vendedores, s.logger)
}

func (s *Server) handleVendedorGet(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "ID inválido")
		return
	}

	vendedor, err := s.store.VendedorPorID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Vendedor não encontrado")
			return
		}
		s.logger.Error("failed to load seller", "error", err, "id", id)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar vendedor")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, vendedor, s.logger)
}

func (s *Server) handleVendedorPerformance(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "ID inválido")
		return
	}

	perf, err := s.store.VendedorPerformance(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Vendedor não encontrado")
			return
		}
		s.logger.Error("failed to compute seller performance", "error", err, "id", id)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar performance")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, perf, s.logger)
}

// VendedorCreateRequest is the body of POST /api/vendedores.
type VendedorCreateRequest struct {
	Nome       string  `json:"nome" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Regiao     string  `json:"regiao" validate:"required"`
	MetaMensal float64 `json:"meta_mensal" validate:"gte=0"`
}

func (s *Server) handleVendedorCreate(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	var req VendedorCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Campos obrigatórios: nome, email, regiao")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Campos obrigatórios: nome, email, regiao")
		return
	}

	vendedor, err := s.store.CreateVendedor(r.Context(), store.Vendedor{
		Nome:          req.Nome,
		Email:         req.Email,
		RegiaoAtuacao: req.Regiao,
		MetaMensal:    req.MetaMensal,
		Status:        "ativo",
	})
	if err != nil {
		s.logger.Error("failed to create seller", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao criar vendedor")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, vendedor, s.logger)
}

func (s *Server) handleUsersList(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	users, err := s.store.Users(r.Context())
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar usuários")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, users, s.logger)
}

// UserCreateRequest is the body of POST /api/admin/users.
type UserCreateRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Nome       string `json:"nome" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"omitempty,oneof=admin user vendedor"`
	VendedorID *int64 `json:"vendedor_id"`
}

func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	var req UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Campos obrigatórios: email, nome, password")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Campos obrigatórios: email, nome, password")
		return
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	user, err := s.auth.CreateUser(r.Context(), req.Email, req.Nome, req.Password, role, req.VendedorID)
	if err != nil {
		s.logger.Error("failed to create user", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao criar usuário")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"nome":  user.Nome,
		"role":  user.Role,
	}, s.logger)
}
