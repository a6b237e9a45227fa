package api

import (
	"net/http"

	"github.com/mgtools/nexo/internal/auth"
	"github.com/mgtools/nexo/internal/store"
)

func periodoFromQuery(r *http.Request) store.Periodo {
	q := r.URL.Query()
	return store.ResolvePeriodo(q.Get("periodo"), q.Get("dataInicio"), q.Get("dataFim"))
}

func (s *Server) handleDashboardKPIs(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	kpis, err := s.store.DashboardKPIs(r.Context(), periodoFromQuery(r))
	if err != nil {
		s.logger.Error("failed to compute KPIs", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar KPIs")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, kpis, s.logger)
}

func (s *Server) handleVendasPorVendedor(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	vendas, err := s.store.VendasPorVendedor(r.Context(), periodoFromQuery(r))
	if err != nil {
		s.logger.Error("failed to compute sales by seller", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar vendas por vendedor")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, vendas, s.logger)
}

func (s *Server) handleEvolucaoReceita(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	pontos, err := s.store.EvolucaoReceita(r.Context(), periodoFromQuery(r))
	if err != nil {
		s.logger.Error("failed to compute revenue evolution", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar evolução de receita")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, pontos, s.logger)
}
