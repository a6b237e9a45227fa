package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

const clienteColumns = `id, nome, grupo, potencial, orcamento_aberto, meta,
	ultima_compra, ultima_visita, valor_testes, maquinario, material_usinado,
	tipo_servico, familia_produtos, status, regiao, vendedor_id, created_at`

func scanCliente(row interface{ Scan(...any) error }) (Cliente, error) {
	var c Cliente
	var grupo, ultimaCompra, ultimaVisita, maquinario, materialUsinado sql.NullString
	var tipoServico, familiaProdutos, status, regiao sql.NullString
	var vendedorID sql.NullInt64

	err := row.Scan(&c.ID, &c.Nome, &grupo, &c.Potencial, &c.OrcamentoAberto,
		&c.Meta, &ultimaCompra, &ultimaVisita, &c.ValorTestes, &maquinario,
		&materialUsinado, &tipoServico, &familiaProdutos, &status, &regiao,
		&vendedorID, &c.CreatedAt)
	if err != nil {
		return Cliente{}, err
	}

	c.Grupo = grupo.String
	c.UltimaCompra = ultimaCompra.String
	c.UltimaVisita = ultimaVisita.String
	c.Maquinario = maquinario.String
	c.MaterialUsinado = materialUsinado.String
	c.TipoServico = tipoServico.String
	c.FamiliaProdutos = familiaProdutos.String
	c.Status = status.String
	c.Regiao = regiao.String
	if vendedorID.Valid {
		c.VendedorID = &vendedorID.Int64
	}
	return c, nil
}

// ClientesPorCriterio searches clients by any combination of region, status,
// product family substring and minimum days without purchase. Results are
// ordered by potential, highest first. The result is never nil.
func (s *Store) ClientesPorCriterio(ctx context.Context, f ClienteFiltro) ([]Cliente, error) {
	var conds []string
	var args []any

	if f.Regiao != "" {
		conds = append(conds, "regiao = ?")
		args = append(args, f.Regiao)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.FamiliaProdutos != "" {
		conds = append(conds, "familia_produtos LIKE ?")
		args = append(args, "%"+f.FamiliaProdutos+"%")
	}
	if f.DiasSemCompra > 0 {
		cutoff := time.Now().AddDate(0, 0, -f.DiasSemCompra).Format(DateLayout)
		conds = append(conds, "ultima_compra < ?")
		args = append(args, cutoff)
	}

	limite := f.Limite
	if limite <= 0 {
		limite = 20
	}
	args = append(args, limite)

	query := "SELECT " + clienteColumns + " FROM clientes"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY potencial DESC LIMIT ?"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clientes: %w", err)
	}
	defer rows.Close()

	clientes := make([]Cliente, 0)
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, err
		}
		clientes = append(clientes, c)
	}
	return clientes, rows.Err()
}

// ClientesInativos lists clients whose last purchase is older than diasMinimos
// days, oldest purchase first, annotated with days elapsed and a follow-up
// priority. The result is never nil.
func (s *Store) ClientesInativos(ctx context.Context, diasMinimos, limite int) ([]ClienteInativo, error) {
	if diasMinimos <= 0 {
		diasMinimos = 60
	}
	if limite <= 0 {
		limite = 20
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, -diasMinimos).Format(DateLayout)

	query := "SELECT " + clienteColumns + ` FROM clientes
		WHERE ultima_compra IS NOT NULL AND ultima_compra < ?
		ORDER BY ultima_compra ASC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, cutoff, limite)
	if err != nil {
		return nil, fmt.Errorf("query clientes inativos: %w", err)
	}
	defer rows.Close()

	inativos := make([]ClienteInativo, 0)
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, err
		}

		dias := 0
		if t, err := time.Parse(DateLayout, c.UltimaCompra); err == nil {
			dias = int(math.Ceil(now.Sub(t).Hours() / 24))
		}

		prioridade := "baixo"
		switch {
		case dias > 90:
			prioridade = "alto"
		case dias > 60:
			prioridade = "medio"
		}

		inativos = append(inativos, ClienteInativo{
			Cliente:       c,
			DiasSemCompra: dias,
			Prioridade:    prioridade,
		})
	}
	return inativos, rows.Err()
}

// ClientePorID fetches a single client by id.
func (s *Store) ClientePorID(ctx context.Context, id int64) (Cliente, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+clienteColumns+" FROM clientes WHERE id = ?", id)
	c, err := scanCliente(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Cliente{}, fmt.Errorf("cliente %d: %w", id, ErrNotFound)
	}
	return c, err
}

// Clientes lists all clients ordered by name.
func (s *Store) Clientes(ctx context.Context) ([]Cliente, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+clienteColumns+" FROM clientes ORDER BY nome ASC")
	if err != nil {
		return nil, fmt.Errorf("query clientes: %w", err)
	}
	defer rows.Close()

	clientes := make([]Cliente, 0)
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, err
		}
		clientes = append(clientes, c)
	}
	return clientes, rows.Err()
}

// PotencialCliente analyzes a client's purchase history: volume, average
// ticket and trend. The trend compares the last three months of orders
// against the three months before that. Only the 12 most recent orders
// enter the analysis.
func (s *Store) PotencialCliente(ctx context.Context, clienteID int64) (Potencial, error) {
	c, err := s.ClientePorID(ctx, clienteID)
	if err != nil {
		return Potencial{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT valor, data_pedido FROM pedidos
		 WHERE cliente_id = ? ORDER BY data_pedido DESC LIMIT 12`, clienteID)
	if err != nil {
		return Potencial{}, fmt.Errorf("query pedidos: %w", err)
	}
	defer rows.Close()

	type pedidoResumo struct {
		valor float64
		data  string
	}
	var pedidos []pedidoResumo
	var valorTotal float64
	for rows.Next() {
		var p pedidoResumo
		if err := rows.Scan(&p.valor, &p.data); err != nil {
			return Potencial{}, err
		}
		pedidos = append(pedidos, p)
		valorTotal += p.valor
	}
	if err := rows.Err(); err != nil {
		return Potencial{}, err
	}

	ticketMedio := 0.0
	if len(pedidos) > 0 {
		ticketMedio = valorTotal / float64(len(pedidos))
	}

	now := time.Now()
	recentesDesde := now.AddDate(0, -3, 0).Format(DateLayout)
	anterioresDesde := now.AddDate(0, -6, 0).Format(DateLayout)

	// Dates are DateLayout strings, so >= compares correctly; both window
	// starts are inclusive.
	var recentes, anteriores float64
	for _, p := range pedidos {
		switch {
		case p.data >= recentesDesde:
			recentes += p.valor
		case p.data >= anterioresDesde:
			anteriores += p.valor
		}
	}

	tendencia := "estavel"
	switch {
	case recentes > anteriores*1.1:
		tendencia = "crescente"
	case recentes < anteriores*0.9:
		tendencia = "decrescente"
	}

	return Potencial{
		Cliente: ClienteResumo{
			ID:     c.ID,
			Nome:   c.Nome,
			Regiao: c.Regiao,
			Status: c.Status,
		},
		TotalCompras:      len(pedidos),
		ValorTotal:        valorTotal,
		TicketMedio:       ticketMedio,
		PotencialEstimado: c.Potencial,
		Tendencia:         tendencia,
		FamiliaProdutos:   c.FamiliaProdutos,
		Maquinario:        c.Maquinario,
		MaterialUsinado:   c.MaterialUsinado,
		UltimaCompra:      c.UltimaCompra,
	}, nil
}
