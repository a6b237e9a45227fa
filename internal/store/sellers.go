package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const vendedorColumns = `id, nome, email, telefone, regiao_atuacao, meta_mensal,
	comissao_percentual, status, data_contratacao, created_at`

func scanVendedor(row interface{ Scan(...any) error }) (Vendedor, error) {
	var v Vendedor
	var telefone, regiao, status, contratacao sql.NullString

	err := row.Scan(&v.ID, &v.Nome, &v.Email, &telefone, &regiao,
		&v.MetaMensal, &v.ComissaoPercentual, &status, &contratacao, &v.CreatedAt)
	if err != nil {
		return Vendedor{}, err
	}

	v.Telefone = telefone.String
	v.RegiaoAtuacao = regiao.String
	v.Status = status.String
	v.DataContratacao = contratacao.String
	return v, nil
}

// Vendedores lists the sales team ordered by name.
func (s *Store) Vendedores(ctx context.Context) ([]Vendedor, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+vendedorColumns+" FROM vendedores ORDER BY nome ASC")
	if err != nil {
		return nil, fmt.Errorf("query vendedores: %w", err)
	}
	defer rows.Close()

	vendedores := make([]Vendedor, 0)
	for rows.Next() {
		v, err := scanVendedor(rows)
		if err != nil {
			return nil, err
		}
		vendedores = append(vendedores, v)
	}
	return vendedores, rows.Err()
}

// VendedorPorID fetches a single seller by id.
func (s *Store) VendedorPorID(ctx context.Context, id int64) (Vendedor, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+vendedorColumns+" FROM vendedores WHERE id = ?", id)
	v, err := scanVendedor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Vendedor{}, fmt.Errorf("vendedor %d: %w", id, ErrNotFound)
	}
	return v, err
}

// CreateVendedor inserts a new seller and returns it with the assigned id.
func (s *Store) CreateVendedor(ctx context.Context, v Vendedor) (Vendedor, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO vendedores (nome, email, telefone, regiao_atuacao,
			meta_mensal, comissao_percentual, status, data_contratacao)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Nome, v.Email, nullIfEmpty(v.Telefone), nullIfEmpty(v.RegiaoAtuacao),
		v.MetaMensal, v.ComissaoPercentual, nullIfEmpty(v.Status),
		nullIfEmpty(v.DataContratacao))
	if err != nil {
		return Vendedor{}, fmt.Errorf("insert vendedor: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Vendedor{}, err
	}
	return s.VendedorPorID(ctx, id)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// VendedorResumo is the identity slice of a seller used in the performance view.
type VendedorResumo struct {
	ID            int64  `json:"id"`
	Nome          string `json:"nome"`
	Email         string `json:"email"`
	RegiaoAtuacao string `json:"regiao_atuacao,omitempty"`
}

// PerformanceVendedor pairs a seller with lifetime performance numbers.
// Only completed orders count as sales.
type PerformanceVendedor struct {
	Vendedor    VendedorResumo `json:"vendedor"`
	Performance struct {
		VendasTotais     float64 `json:"vendas_totais"`
		MetaMensal       float64 `json:"meta_mensal"`
		AtingimentoMeta  float64 `json:"atingimento_meta"`
		ComissaoEstimada float64 `json:"comissao_estimada"`
		ClientesAtivos   int     `json:"clientes_ativos"`
		TotalPedidos     int     `json:"total_pedidos"`
	} `json:"performance"`
}

// VendedorPerformance computes a seller's sales, commission, goal attainment
// and active client count.
func (s *Store) VendedorPerformance(ctx context.Context, id int64) (PerformanceVendedor, error) {
	v, err := s.VendedorPorID(ctx, id)
	if err != nil {
		return PerformanceVendedor{}, err
	}

	var perf PerformanceVendedor
	perf.Vendedor = VendedorResumo{
		ID:            v.ID,
		Nome:          v.Nome,
		Email:         v.Email,
		RegiaoAtuacao: v.RegiaoAtuacao,
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(valor), 0), COUNT(*) FROM pedidos
		WHERE vendedor_id = ? AND status = 'concluido'`, id).
		Scan(&perf.Performance.VendasTotais, &perf.Performance.TotalPedidos)
	if err != nil {
		return PerformanceVendedor{}, fmt.Errorf("vendas do vendedor: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM clientes
		WHERE vendedor_id = ? AND status = 'ativo'`, id).
		Scan(&perf.Performance.ClientesAtivos)
	if err != nil {
		return PerformanceVendedor{}, fmt.Errorf("clientes do vendedor: %w", err)
	}

	perf.Performance.MetaMensal = v.MetaMensal
	perf.Performance.ComissaoEstimada = perf.Performance.VendasTotais * v.ComissaoPercentual / 100
	if v.MetaMensal > 0 {
		perf.Performance.AtingimentoMeta = perf.Performance.VendasTotais / v.MetaMensal * 100
	}
	return perf, nil
}
