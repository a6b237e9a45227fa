package store

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Periodo resolves a named dashboard period ("7d", "30d", "90d", "1y") or a
// custom date pair into the current window and the preceding window of the
// same length. Dates are DateLayout strings; zero values fall back to 30d.
type Periodo struct {
	Inicio         string
	Fim            string
	AnteriorInicio string
	AnteriorFim    string
}

// ResolvePeriodo computes the query windows for a dashboard request.
func ResolvePeriodo(nome, dataInicio, dataFim string) Periodo {
	if dataInicio != "" && dataFim != "" {
		inicio, err1 := time.Parse(DateLayout, dataInicio)
		fim, err2 := time.Parse(DateLayout, dataFim)
		if err1 == nil && err2 == nil {
			dias := int(fim.Sub(inicio).Hours() / 24)
			antFim := inicio.AddDate(0, 0, -1)
			antInicio := antFim.AddDate(0, 0, -dias)
			return Periodo{
				Inicio:         dataInicio,
				Fim:            dataFim,
				AnteriorInicio: antInicio.Format(DateLayout),
				AnteriorFim:    antFim.Format(DateLayout),
			}
		}
	}

	hoje := time.Now()
	var inicio time.Time
	switch nome {
	case "7d":
		inicio = hoje.AddDate(0, 0, -7)
	case "90d":
		inicio = hoje.AddDate(0, 0, -90)
	case "1y":
		inicio = hoje.AddDate(-1, 0, 0)
	default:
		inicio = hoje.AddDate(0, 0, -30)
	}

	dias := int(hoje.Sub(inicio).Hours() / 24)
	return Periodo{
		Inicio:         inicio.Format(DateLayout),
		Fim:            hoje.Format(DateLayout),
		AnteriorInicio: inicio.AddDate(0, 0, -dias).Format(DateLayout),
		AnteriorFim:    inicio.Format(DateLayout),
	}
}

func (s *Store) sumPedidos(ctx context.Context, where string, args ...any) (float64, int, error) {
	var total float64
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(valor), 0), COUNT(*) FROM pedidos WHERE "+where, args...).
		Scan(&total, &count)
	return total, count, err
}

func (s *Store) topRanking(ctx context.Context, join, nameCol, where string, limit int, args ...any) ([]RankItem, error) {
	query := fmt.Sprintf(`SELECT COALESCE(%s, 'Desconhecido') AS nome, SUM(p.valor) AS valor
		FROM pedidos p %s WHERE %s GROUP BY nome ORDER BY valor DESC LIMIT %d`,
		nameCol, join, where, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]RankItem, 0)
	for rows.Next() {
		var it RankItem
		if err := rows.Scan(&it.Nome, &it.Valor); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AnaliseVendasPeriodo aggregates revenue over the trailing diasAtras days,
// compares it with the preceding window of equal length, and ranks the top
// five products and clients by revenue. Variation is zero when the preceding
// window had no revenue.
func (s *Store) AnaliseVendasPeriodo(ctx context.Context, diasAtras int) (AnalisePeriodo, error) {
	if diasAtras <= 0 {
		diasAtras = 30
	}

	hoje := time.Now()
	inicio := hoje.AddDate(0, 0, -diasAtras).Format(DateLayout)
	anterior := hoje.AddDate(0, 0, -2*diasAtras).Format(DateLayout)

	total, _, err := s.sumPedidos(ctx, "data_pedido >= ?", inicio)
	if err != nil {
		return AnalisePeriodo{}, fmt.Errorf("faturamento do periodo: %w", err)
	}
	totalAnterior, _, err := s.sumPedidos(ctx, "data_pedido >= ? AND data_pedido < ?", anterior, inicio)
	if err != nil {
		return AnalisePeriodo{}, fmt.Errorf("faturamento anterior: %w", err)
	}

	variacao := 0.0
	if totalAnterior > 0 {
		variacao = (total - totalAnterior) / totalAnterior * 100
	}

	topProdutos, err := s.topRanking(ctx,
		"LEFT JOIN produtos pr ON pr.id = p.produto_id", "pr.nome",
		"p.data_pedido >= ?", 5, inicio)
	if err != nil {
		return AnalisePeriodo{}, fmt.Errorf("top produtos: %w", err)
	}

	topClientes, err := s.topRanking(ctx,
		"LEFT JOIN clientes c ON c.id = p.cliente_id", "c.nome",
		"p.data_pedido >= ?", 5, inicio)
	if err != nil {
		return AnalisePeriodo{}, fmt.Errorf("top clientes: %w", err)
	}

	return AnalisePeriodo{
		Periodo:            fmt.Sprintf("Últimos %d dias", diasAtras),
		FaturamentoTotal:   total,
		VariacaoPercentual: variacao,
		TopProdutos:        topProdutos,
		TopClientes:        topClientes,
	}, nil
}

// DashboardKPIs computes the headline dashboard numbers for a period.
func (s *Store) DashboardKPIs(ctx context.Context, p Periodo) (DashboardKPIs, error) {
	var k DashboardKPIs

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM clientes").Scan(&k.TotalClientes); err != nil {
		return k, err
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM clientes WHERE status = 'ativo'").Scan(&k.ClientesAtivos); err != nil {
		return k, err
	}

	corte := time.Now().AddDate(0, 0, -60).Format(DateLayout)
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM clientes WHERE ultima_compra < ?", corte).Scan(&k.ClientesInativos); err != nil {
		return k, err
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(orcamento_aberto), 0) FROM clientes").Scan(&k.CotacoesAbertas); err != nil {
		return k, err
	}

	var err error
	k.ReceitaMensal, _, err = s.sumPedidos(ctx,
		"data_pedido >= ? AND data_pedido <= ?", p.Inicio, p.Fim)
	if err != nil {
		return k, err
	}
	k.ReceitaAnterior, _, err = s.sumPedidos(ctx,
		"data_pedido >= ? AND data_pedido <= ?", p.AnteriorInicio, p.AnteriorFim)
	if err != nil {
		return k, err
	}

	produtos, err := s.topRanking(ctx,
		"LEFT JOIN produtos pr ON pr.id = p.produto_id", "pr.nome",
		"p.data_pedido >= ? AND p.data_pedido <= ?", 5, p.Inicio, p.Fim)
	if err != nil {
		return k, err
	}
	k.TopProdutos = make([]RankPercentual, 0, len(produtos))
	for _, it := range produtos {
		pct := 0.0
		if k.ReceitaMensal > 0 {
			pct = it.Valor / k.ReceitaMensal * 100
		}
		k.TopProdutos = append(k.TopProdutos, RankPercentual{
			Nome:       it.Nome,
			Valor:      it.Valor,
			Percentual: pct,
		})
	}

	k.TopClientes, err = s.topRanking(ctx,
		"LEFT JOIN clientes c ON c.id = p.cliente_id", "c.nome",
		"p.data_pedido >= ? AND p.data_pedido <= ?", 5, p.Inicio, p.Fim)
	if err != nil {
		return k, err
	}

	return k, nil
}

// VendasPorVendedor aggregates completed orders per seller over a period.
func (s *Store) VendasPorVendedor(ctx context.Context, p Periodo) ([]VendasVendedor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.nome, v.meta_mensal,
		       COALESCE(SUM(p.valor), 0) AS total,
		       COUNT(p.id) AS pedidos
		FROM vendedores v
		LEFT JOIN pedidos p ON p.vendedor_id = v.id
		     AND p.status = 'concluido'
		     AND p.data_pedido >= ? AND p.data_pedido <= ?
		GROUP BY v.id, v.nome, v.meta_mensal
		ORDER BY total DESC`, p.Inicio, p.Fim)
	if err != nil {
		return nil, fmt.Errorf("vendas por vendedor: %w", err)
	}
	defer rows.Close()

	vendas := make([]VendasVendedor, 0)
	for rows.Next() {
		var v VendasVendedor
		if err := rows.Scan(&v.VendedorID, &v.Nome, &v.MetaMensal, &v.TotalVendas, &v.TotalPedidos); err != nil {
			return nil, err
		}
		if v.MetaMensal > 0 {
			v.Atingimento = v.TotalVendas / v.MetaMensal * 100
		}
		vendas = append(vendas, v)
	}
	return vendas, rows.Err()
}

// EvolucaoReceita buckets revenue over a period: daily for windows up to 31
// days, ISO-weekly up to 180 days, monthly beyond that. Daily buckets are
// zero-filled so charts render gaps.
func (s *Store) EvolucaoReceita(ctx context.Context, p Periodo) ([]ReceitaPonto, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data_pedido, valor FROM pedidos
		WHERE data_pedido >= ? AND data_pedido <= ?
		ORDER BY data_pedido ASC`, p.Inicio, p.Fim)
	if err != nil {
		return nil, fmt.Errorf("evolucao receita: %w", err)
	}
	defer rows.Close()

	type pedido struct {
		data  time.Time
		valor float64
	}
	var pedidos []pedido
	for rows.Next() {
		var dataStr string
		var valor float64
		if err := rows.Scan(&dataStr, &valor); err != nil {
			return nil, err
		}
		t, err := time.Parse(DateLayout, dataStr)
		if err != nil {
			continue
		}
		pedidos = append(pedidos, pedido{data: t, valor: valor})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	inicio, err := time.Parse(DateLayout, p.Inicio)
	if err != nil {
		return nil, fmt.Errorf("periodo invalido: %w", err)
	}
	fim, err := time.Parse(DateLayout, p.Fim)
	if err != nil {
		return nil, fmt.Errorf("periodo invalido: %w", err)
	}
	dias := int(fim.Sub(inicio).Hours() / 24)

	bucket := func(t time.Time) string {
		switch {
		case dias <= 31:
			return t.Format(DateLayout)
		case dias <= 180:
			ano, semana := t.ISOWeek()
			return fmt.Sprintf("%d-S%02d", ano, semana)
		default:
			return t.Format("2006-01")
		}
	}

	valores := make(map[string]float64)
	contagens := make(map[string]int)
	for _, pd := range pedidos {
		b := bucket(pd.data)
		valores[b] += pd.valor
		contagens[b]++
	}

	if dias <= 31 {
		pontos := make([]ReceitaPonto, 0, dias+1)
		for d := inicio; !d.After(fim); d = d.AddDate(0, 0, 1) {
			b := d.Format(DateLayout)
			pontos = append(pontos, ReceitaPonto{
				Periodo: b,
				Valor:   valores[b],
				Pedidos: contagens[b],
			})
		}
		return pontos, nil
	}

	chaves := make([]string, 0, len(valores))
	for b := range valores {
		chaves = append(chaves, b)
	}
	sort.Strings(chaves)

	pontos := make([]ReceitaPonto, 0, len(chaves))
	for _, b := range chaves {
		pontos = append(pontos, ReceitaPonto{
			Periodo: b,
			Valor:   valores[b],
			Pedidos: contagens[b],
		})
	}
	return pontos, nil
}

// Pedidos lists orders most recent first, optionally limited.
func (s *Store) Pedidos(ctx context.Context, limite int) ([]Pedido, error) {
	query := `SELECT id, cliente_id, produto_id, vendedor_id, valor, data_pedido, status, created_at
		FROM pedidos ORDER BY data_pedido DESC`
	var args []any
	if limite > 0 {
		query += " LIMIT ?"
		args = append(args, limite)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pedidos: %w", err)
	}
	defer rows.Close()

	pedidos := make([]Pedido, 0)
	for rows.Next() {
		var p Pedido
		var produtoID, vendedorID *int64
		var status *string
		if err := rows.Scan(&p.ID, &p.ClienteID, &produtoID, &vendedorID,
			&p.Valor, &p.DataPedido, &status, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.ProdutoID = produtoID
		p.VendedorID = vendedorID
		if status != nil {
			p.Status = *status
		}
		pedidos = append(pedidos, p)
	}
	return pedidos, rows.Err()
}
