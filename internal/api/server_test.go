package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgtools/nexo/internal/agent"
	"github.com/mgtools/nexo/internal/auth"
	"github.com/mgtools/nexo/internal/history"
	"github.com/mgtools/nexo/internal/llm"
	"github.com/mgtools/nexo/internal/store"
	"github.com/mgtools/nexo/internal/tools"
)

// cannedModel answers every chat request with fixed text, no tool calls.
type cannedModel struct {
	content string
}

func (c *cannedModel) Chat(ctx context.Context, messages []llm.Message, defs []llm.ToolDef) (*llm.Response, error) {
	return &llm.Response{Content: c.content}, nil
}

type testEnv struct {
	handler    http.Handler
	store      *store.Store
	history    *history.Store
	adminToken string
	userToken  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	hs, err := history.New(st.DB())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	am := auth.NewManager(st, time.Hour)
	ag := agent.New(&cannedModel{content: "Análise pronta."}, tools.NewAnalysisRegistry(st), agent.WithLogger(logger))

	srv := NewServer("", 0, ag, st, hs, am, 50, logger)

	ctx := context.Background()
	if _, err := am.CreateUser(ctx, "admin@mgtools.com.br", "Admin", "segredo123", "admin", nil); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if _, err := am.CreateUser(ctx, "user@mgtools.com.br", "User", "segredo123", "user", nil); err != nil {
		t.Fatalf("create user: %v", err)
	}

	adminToken, _, err := am.Login(ctx, "admin@mgtools.com.br", "segredo123")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	userToken, _, err := am.Login(ctx, "user@mgtools.com.br", "segredo123")
	if err != nil {
		t.Fatalf("user login: %v", err)
	}

	return &testEnv{
		handler:    srv.Handler(),
		store:      st,
		history:    hs,
		adminToken: adminToken,
		userToken:  userToken,
	}
}

func (e *testEnv) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(w.Body).Decode(&m); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return m
}

func TestHealthIsPublic(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, "GET", "/api/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "OK" || body["service"] != "NEXO MG Tools" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{"POST", "/api/agent/analyze"},
		{"GET", "/api/agent/history"},
		{"GET", "/api/clientes"},
		{"GET", "/api/dashboard/kpis"},
		{"GET", "/api/vendedores"},
	}

	for _, p := range paths {
		w := e.request(t, p.method, p.path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", p.method, p.path, w.Code)
		}
		body := decodeBody(t, w)
		if body["error"] != "Não autenticado" {
			t.Errorf("%s %s: error = %v", p.method, p.path, body["error"])
		}
	}
}

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, "GET", "/api/admin/users", e.userToken, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	body := decodeBody(t, w)
	if !strings.Contains(body["error"].(string), "administradores") {
		t.Errorf("unexpected error: %v", body["error"])
	}

	w = e.request(t, "GET", "/api/admin/users", e.adminToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", w.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, "POST", "/api/auth/login", "", `{"email": "admin@mgtools.com.br", "password": "segredo123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("no token in login response")
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "admin@mgtools.com.br" {
		t.Errorf("wrong user in login response: %v", user)
	}

	// Session cookie is set for browser clients.
	cookies := w.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == "nexo_session" && c.Value == token && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Errorf("session cookie not set: %v", cookies)
	}

	// The token authenticates /me.
	w = e.request(t, "GET", "/api/auth/me", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}

	// Logout invalidates it.
	w = e.request(t, "POST", "/api/auth/logout", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	w = e.request(t, "GET", "/api/auth/me", token, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d, want 401", w.Code)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, "POST", "/api/auth/login", "", `{"email": "admin@mgtools.com.br", "password": "errada"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "Credenciais inválidas" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestLoginMissingFields(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, "POST", "/api/auth/login", "", `{"email": "admin@mgtools.com.br"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAnalyzePersistsHistory(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, "POST", "/api/agent/analyze", e.userToken, `{"query": "Como estão as vendas?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	if body["analysis"] != "Análise pronta." {
		t.Errorf("analysis = %v", body["analysis"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"].(string)); err != nil {
		t.Errorf("bad timestamp: %v", body["timestamp"])
	}

	// Question and answer landed in the history as a pair.
	turns, err := e.history.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != "user" || turns[0].Content != "Como estão as vendas?" {
		t.Errorf("user turn: %+v", turns[0])
	}
	if turns[1].Role != "agent" || turns[1].Content != "Análise pronta." {
		t.Errorf("agent turn: %+v", turns[1])
	}
}

func TestAnalyzeRejectsBlankQuery(t *testing.T) {
	e := newTestEnv(t)

	for _, body := range []string{`{}`, `{"query": ""}`, `{"query": "   "}`, `não é json`} {
		w := e.request(t, "POST", "/api/agent/analyze", e.userToken, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}

	// Nothing was persisted.
	turns, err := e.history.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("expected empty history, got %d turns", len(turns))
	}
}

func TestHistoryClear(t *testing.T) {
	e := newTestEnv(t)

	e.request(t, "POST", "/api/agent/analyze", e.userToken, `{"query": "pergunta"}`)

	w := e.request(t, "DELETE", "/api/agent/history", e.userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Histórico limpo com sucesso" {
		t.Errorf("message = %v", body["message"])
	}

	w = e.request(t, "GET", "/api/agent/history", e.userToken, "")
	var turns []history.Turn
	if err := json.NewDecoder(w.Body).Decode(&turns); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("expected empty history, got %d", len(turns))
	}
}

func TestReportEndpoint(t *testing.T) {
	e := newTestEnv(t)

	e.request(t, "POST", "/api/agent/analyze", e.userToken, `{"query": "pergunta"}`)

	w := e.request(t, "GET", "/api/agent/report", e.userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(w.Body.String(), "Relatório de Análises") {
		t.Error("report page missing title")
	}
}

func TestClienteEndpoints(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if _, err := e.store.DB().ExecContext(ctx, `INSERT INTO clientes (nome, regiao, status, potencial)
		VALUES ('Usinagem Gama', 'sul', 'ativo', 700)`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := e.request(t, "GET", "/api/clientes", e.userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var clientes []store.Cliente
	if err := json.NewDecoder(w.Body).Decode(&clientes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(clientes) != 1 || clientes[0].Nome != "Usinagem Gama" {
		t.Fatalf("unexpected list: %v", clientes)
	}

	w = e.request(t, "GET", "/api/clientes/1", e.userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = e.request(t, "GET", "/api/clientes/999", e.userToken, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing client status = %d, want 404", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "Cliente não encontrado" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestVendedorCreate(t *testing.T) {
	e := newTestEnv(t)

	// Regular users cannot create sellers.
	w := e.request(t, "POST", "/api/vendedores", e.userToken,
		`{"nome": "Novo", "email": "novo@mgtools.com.br", "regiao": "sul"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("user create status = %d, want 403", w.Code)
	}

	w = e.request(t, "POST", "/api/vendedores", e.adminToken,
		`{"nome": "Novo", "email": "novo@mgtools.com.br", "regiao": "sul", "meta_mensal": 12000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("admin create status = %d: %s", w.Code, w.Body.String())
	}
	var vendedor store.Vendedor
	if err := json.NewDecoder(w.Body).Decode(&vendedor); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vendedor.ID == 0 || vendedor.Status != "ativo" {
		t.Errorf("unexpected seller: %+v", vendedor)
	}

	// Missing required fields.
	w = e.request(t, "POST", "/api/vendedores", e.adminToken, `{"nome": "Sem Email"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid create status = %d, want 400", w.Code)
	}
}

func TestUserCreate(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, "POST", "/api/admin/users", e.adminToken,
		`{"email": "nova@mgtools.com.br", "nome": "Nova", "password": "segredo123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	// Role defaults to user; the hash never leaves the server.
	if body["role"] != "user" {
		t.Errorf("role = %v, want user", body["role"])
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password hash in response")
	}

	// Short passwords are rejected.
	w = e.request(t, "POST", "/api/admin/users", e.adminToken,
		`{"email": "x@mgtools.com.br", "nome": "X", "password": "123"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password status = %d, want 400", w.Code)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	db := e.store.DB()
	if _, err := db.ExecContext(ctx, `INSERT INTO clientes (nome, status, orcamento_aberto)
		VALUES ('Cliente', 'ativo', 900)`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	hoje := time.Now().Format("2006-01-02")
	if _, err := db.ExecContext(ctx, `INSERT INTO pedidos (cliente_id, valor, data_pedido, status)
		VALUES (1, 1500, ?, 'concluido')`, hoje); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := e.request(t, "GET", "/api/dashboard/kpis?periodo=30d", e.userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("kpis status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["total_clientes"] != float64(1) {
		t.Errorf("total_clientes = %v", body["total_clientes"])
	}
	if body["receita_mensal"] != float64(1500) {
		t.Errorf("receita_mensal = %v", body["receita_mensal"])
	}

	w = e.request(t, "GET", "/api/dashboard/vendas-por-vendedor", e.userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("vendas status = %d", w.Code)
	}

	w = e.request(t, "GET", "/api/dashboard/evolucao-receita?periodo=7d", e.userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("evolucao status = %d", w.Code)
	}
	var pontos []store.ReceitaPonto
	if err := json.NewDecoder(w.Body).Decode(&pontos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pontos) != 8 {
		t.Errorf("expected 8 daily points for 7d window, got %d", len(pontos))
	}
}

func TestSessionCookieAuthenticates(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest("GET", "/api/clientes", nil)
	req.AddCookie(&http.Cookie{Name: "nexo_session", Value: e.userToken})
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("cookie auth status = %d, want 200", w.Code)
	}
}

func TestParseIntParam(t *testing.T) {
	req := httptest.NewRequest("GET", "/x?limit=15&neg=-3&bad=abc", nil)

	if got := parseIntParam(req, "limit", 50); got != 15 {
		t.Errorf("limit = %d, want 15", got)
	}
	if got := parseIntParam(req, "neg", 50); got != 50 {
		t.Errorf("negative should fall back, got %d", got)
	}
	if got := parseIntParam(req, "bad", 50); got != 50 {
		t.Errorf("non-numeric should fall back, got %d", got)
	}
	if got := parseIntParam(req, "ausente", 50); got != 50 {
		t.Errorf("missing should fall back, got %d", got)
	}
}
