package store

import "time"

// Cliente is a customer account in the sales base.
type Cliente struct {
	ID              int64     `json:"id"`
	Nome            string    `json:"nome"`
	Grupo           string    `json:"grupo,omitempty"`
	Potencial       float64   `json:"potencial"`
	OrcamentoAberto float64   `json:"orcamento_aberto"`
	Meta            float64   `json:"meta"`
	UltimaCompra    string    `json:"ultima_compra,omitempty"`
	UltimaVisita    string    `json:"ultima_visita,omitempty"`
	ValorTestes     float64   `json:"valor_testes"`
	Maquinario      string    `json:"maquinario,omitempty"`
	MaterialUsinado string    `json:"material_usinado,omitempty"`
	TipoServico     string    `json:"tipo_servico,omitempty"`
	FamiliaProdutos string    `json:"familia_produtos,omitempty"`
	Status          string    `json:"status,omitempty"`
	Regiao          string    `json:"regiao,omitempty"`
	VendedorID      *int64    `json:"vendedor_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ClienteInativo is a customer enriched with inactivity metrics.
type ClienteInativo struct {
	Cliente
	DiasSemCompra int    `json:"dias_sem_compra"`
	Prioridade    string `json:"prioridade"`
}

// Produto is a catalog product.
type Produto struct {
	ID        int64     `json:"id"`
	Nome      string    `json:"nome"`
	Familia   string    `json:"familia,omitempty"`
	Categoria string    `json:"categoria,omitempty"`
	Descricao string    `json:"descricao,omitempty"`
	PrecoBase float64   `json:"preco_base"`
	CreatedAt time.Time `json:"created_at"`
}

// Pedido is an order placed by a customer.
type Pedido struct {
	ID         int64     `json:"id"`
	ClienteID  int64     `json:"cliente_id"`
	ProdutoID  *int64    `json:"produto_id,omitempty"`
	VendedorID *int64    `json:"vendedor_id,omitempty"`
	Valor      float64   `json:"valor"`
	DataPedido string    `json:"data_pedido"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Vendedor is a member of the sales team.
type Vendedor struct {
	ID                 int64     `json:"id"`
	Nome               string    `json:"nome"`
	Email              string    `json:"email"`
	Telefone           string    `json:"telefone,omitempty"`
	RegiaoAtuacao      string    `json:"regiao_atuacao,omitempty"`
	MetaMensal         float64   `json:"meta_mensal"`
	ComissaoPercentual float64   `json:"comissao_percentual"`
	Status             string    `json:"status,omitempty"`
	DataContratacao    string    `json:"data_contratacao,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// User is an authenticated system user. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Nome         string    `json:"nome"`
	Role         string    `json:"role"`
	VendedorID   *int64    `json:"vendedor_id,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClienteFiltro holds the optional criteria for client searches.
type ClienteFiltro struct {
	Regiao          string
	Status          string
	FamiliaProdutos string
	DiasSemCompra   int
	Limite          int
}

// Potencial summarizes a single customer's purchase behavior.
type Potencial struct {
	Cliente           ClienteResumo `json:"cliente"`
	TotalCompras      int           `json:"total_compras"`
	ValorTotal        float64       `json:"valor_total"`
	TicketMedio       float64       `json:"ticket_medio"`
	PotencialEstimado float64       `json:"potencial_estimado"`
	Tendencia         string        `json:"tendencia"`
	FamiliaProdutos   string        `json:"familia_produtos,omitempty"`
	Maquinario        string        `json:"maquinario,omitempty"`
	MaterialUsinado   string        `json:"material_usinado,omitempty"`
	UltimaCompra      string        `json:"ultima_compra,omitempty"`
}

// ClienteResumo is the identity slice of a customer used inside analyses.
type ClienteResumo struct {
	ID     int64  `json:"id"`
	Nome   string `json:"nome"`
	Regiao string `json:"regiao,omitempty"`
	Status string `json:"status,omitempty"`
}

// RankItem is one row of a revenue ranking (product or customer).
type RankItem struct {
	Nome  string  `json:"nome"`
	Valor float64 `json:"valor"`
}

// AnalisePeriodo aggregates sales over a trailing window against the
// window of the same length that precedes it.
type AnalisePeriodo struct {
	Periodo            string     `json:"periodo"`
	FaturamentoTotal   float64    `json:"faturamento_total"`
	VariacaoPercentual float64    `json:"variacao_percentual"`
	TopProdutos        []RankItem `json:"top_produtos"`
	TopClientes        []RankItem `json:"top_clientes"`
}

// RankPercentual is a ranking row carrying its share of period revenue.
type RankPercentual struct {
	Nome       string  `json:"nome"`
	Valor      float64 `json:"valor"`
	Percentual float64 `json:"percentual"`
}

// DashboardKPIs are the headline numbers for the dashboard.
type DashboardKPIs struct {
	TotalClientes    int              `json:"total_clientes"`
	ClientesAtivos   int              `json:"clientes_ativos"`
	ClientesInativos int              `json:"clientes_inativos"`
	CotacoesAbertas  float64          `json:"cotacoes_abertas"`
	ReceitaMensal    float64          `json:"receita_mensal"`
	ReceitaAnterior  float64          `json:"receita_anterior"`
	TopProdutos      []RankPercentual `json:"top_produtos"`
	TopClientes      []RankItem       `json:"top_clientes"`
}

// VendasVendedor is one seller's aggregate in the sales-by-seller view.
// Only completed orders count toward TotalVendas.
type VendasVendedor struct {
	VendedorID   int64   `json:"vendedor_id"`
	Nome         string  `json:"nome"`
	TotalVendas  float64 `json:"total_vendas"`
	TotalPedidos int     `json:"total_pedidos"`
	MetaMensal   float64 `json:"meta_mensal"`
	Atingimento  float64 `json:"atingimento"`
}

// ReceitaPonto is one bucket of the revenue evolution series.
type ReceitaPonto struct {
	Periodo string  `json:"periodo"`
	Valor   float64 `json:"valor"`
	Pedidos int     `json:"pedidos"`
}
