package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const produtoColumns = `id, nome, familia, categoria, descricao, preco_base, created_at`

func scanProduto(row interface{ Scan(...any) error }) (Produto, error) {
	var p Produto
	var familia, categoria, descricao sql.NullString

	err := row.Scan(&p.ID, &p.Nome, &familia, &categoria, &descricao,
		&p.PrecoBase, &p.CreatedAt)
	if err != nil {
		return Produto{}, err
	}

	p.Familia = familia.String
	p.Categoria = categoria.String
	p.Descricao = descricao.String
	return p, nil
}

// ProdutosPorFamilia lists products filtered by exact family and/or category,
// ordered by name. Both filters are optional. The result is never nil.
func (s *Store) ProdutosPorFamilia(ctx context.Context, familia, categoria string) ([]Produto, error) {
	var conds []string
	var args []any

	if familia != "" {
		conds = append(conds, "familia = ?")
		args = append(args, familia)
	}
	if categoria != "" {
		conds = append(conds, "categoria = ?")
		args = append(args, categoria)
	}

	query := "SELECT " + produtoColumns + " FROM produtos"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY nome ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query produtos: %w", err)
	}
	defer rows.Close()

	produtos := make([]Produto, 0)
	for rows.Next() {
		p, err := scanProduto(rows)
		if err != nil {
			return nil, err
		}
		produtos = append(produtos, p)
	}
	return produtos, rows.Err()
}

// Produtos lists the whole catalog ordered by name.
func (s *Store) Produtos(ctx context.Context) ([]Produto, error) {
	return s.ProdutosPorFamilia(ctx, "", "")
}
