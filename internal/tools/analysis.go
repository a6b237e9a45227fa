package tools

import (
	"context"
	"fmt"

	"github.com/mgtools/nexo/internal/store"
)

// NewAnalysisRegistry builds the standard tool set over the business store.
func NewAnalysisRegistry(st *store.Store) *Registry {
	r := NewRegistry()

	r.Register(&Tool{
		Name:        "get_clientes_por_criterio",
		Description: "Busca clientes com filtros específicos (região, status, dias sem compra, família de produtos)",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"regiao": map[string]any{
					"type":        "string",
					"description": "Região geográfica do cliente (ex: Zona da Mata, Metropolitana, Vale do Rio Doce)",
				},
				"status": map[string]any{
					"type":        "string",
					"enum":        []string{"ativo", "inativo", "contato", "teste", "expansao"},
					"description": "Status do cliente",
				},
				"dias_sem_compra": map[string]any{
					"type":        "integer",
					"description": "Filtrar clientes sem compras há X dias",
				},
				"familia_produtos": map[string]any{
					"type":        "string",
					"description": "Família de produtos de interesse (ex: AHX-440, Ferramentas de Corte)",
				},
				"limite": map[string]any{
					"type":        "integer",
					"default":     20,
					"description": "Número máximo de clientes a retornar",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return st.ClientesPorCriterio(ctx, store.ClienteFiltro{
				Regiao:          stringArg(args, "regiao"),
				Status:          stringArg(args, "status"),
				FamiliaProdutos: stringArg(args, "familia_produtos"),
				DiasSemCompra:   intArg(args, "dias_sem_compra", 0),
				Limite:          intArg(args, "limite", 20),
			})
		},
	})

	r.Register(&Tool{
		Name:        "calcular_potencial_cliente",
		Description: "Calcula o potencial de vendas para um cliente específico baseado em histórico e perfil",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cliente_id": map[string]any{
					"type":        "integer",
					"description": "ID do cliente",
				},
				"familia_produtos": map[string]any{
					"type":        "string",
					"description": "Família de produtos para análise de potencial",
				},
			},
			"required": []string{"cliente_id"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			id := intArg(args, "cliente_id", 0)
			if id <= 0 {
				return nil, fmt.Errorf("cliente_id é obrigatório")
			}
			// familia_produtos is accepted but does not narrow the
			// calculation; the result reports the client's own families.
			return st.PotencialCliente(ctx, int64(id))
		},
	})

	r.Register(&Tool{
		Name:        "get_clientes_inativos",
		Description: "Identifica clientes inativos (sem pedidos há X dias) priorizados por risco",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"dias_minimos": map[string]any{
					"type":        "integer",
					"default":     60,
					"description": "Número mínimo de dias sem compra",
				},
				"limite": map[string]any{
					"type":        "integer",
					"default":     20,
					"description": "Número máximo de clientes a retornar",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return st.ClientesInativos(ctx,
				intArg(args, "dias_minimos", 60),
				intArg(args, "limite", 20))
		},
	})

	r.Register(&Tool{
		Name:        "get_analise_vendas_periodo",
		Description: "Análise completa de vendas em período específico com ranking de produtos e clientes",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"dias_atras": map[string]any{
					"type":        "integer",
					"default":     30,
					"description": "Número de dias para análise retroativa",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return st.AnaliseVendasPeriodo(ctx, intArg(args, "dias_atras", 30))
		},
	})

	r.Register(&Tool{
		Name:        "get_produtos_por_familia",
		Description: "Busca produtos por família ou categoria",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"familia": map[string]any{
					"type":        "string",
					"description": "Família de produtos (ex: Ferramentas de Corte)",
				},
				"categoria": map[string]any{
					"type":        "string",
					"description": "Categoria (ex: Premium, Standard, Economy)",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return st.ProdutosPorFamilia(ctx,
				stringArg(args, "familia"),
				stringArg(args, "categoria"))
		},
	})

	return r
}
