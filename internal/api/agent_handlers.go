package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mgtools/nexo/internal/auth"
	"github.com/mgtools/nexo/internal/history"
	"github.com/mgtools/nexo/internal/report"
)

// AnalyzeRequest is the body of POST /api/agent/analyze.
type AnalyzeRequest struct {
	Query string `json:"query" validate:"required,min=1"`
}

// AnalyzeResponse is the success envelope of POST /api/agent/analyze.
type AnalyzeResponse struct {
	Success   bool           `json:"success"`
	Analysis  string         `json:"analysis"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, user auth.SessionUser) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Query inválida. Forneça uma pergunta válida.")
		return
	}
	if err := s.validate.Struct(req); err != nil || isBlank(req.Query) {
		s.errorResponse(w, http.StatusBadRequest, "Query inválida. Forneça uma pergunta válida.")
		return
	}

	s.logger.Info("analyzing query", "user", user.Email, "query", truncate(req.Query, 100))

	result, err := s.agent.Analyze(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("analysis failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao processar análise")
		return
	}

	// The exchange is persisted as a pair so history never shows a question
	// without its answer. A failed analysis persists nothing.
	err = s.history.Append(r.Context(),
		history.Turn{Role: "user", Content: req.Query},
		history.Turn{Role: "agent", Content: result.Response, Data: result.Data},
	)
	if err != nil {
		s.logger.Error("failed to persist history", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao salvar histórico")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AnalyzeResponse{
		Success:   true,
		Analysis:  result.Response,
		Data:      result.Data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, s.logger)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	limit := parseIntParam(r, "limit", s.historyLimit)

	turns, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao buscar histórico")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, turns, s.logger)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	if err := s.history.Clear(r.Context()); err != nil {
		s.logger.Error("failed to clear history", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao limpar histórico")
		return
	}

	s.logger.Info("chat history cleared")
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"success": true,
		"message": "Histórico limpo com sucesso",
	}, s.logger)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, _ auth.SessionUser) {
	limit := parseIntParam(r, "limit", s.historyLimit)

	turns, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to load history for report", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao gerar relatório")
		return
	}

	page, err := report.RenderHTML(turns)
	if err != nil {
		s.logger.Error("failed to render report", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Erro ao gerar relatório")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(page)); err != nil {
		s.logger.Debug("failed to write report", "error", err)
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
