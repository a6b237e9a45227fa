package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "store_test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// daysAgo formats a business date n days in the past.
func daysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(DateLayout)
}

func insertCliente(t *testing.T, s *Store, c Cliente) int64 {
	t.Helper()
	res, err := s.db.Exec(`
		INSERT INTO clientes (nome, potencial, orcamento_aberto, ultima_compra,
			familia_produtos, status, regiao, vendedor_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Nome, c.Potencial, c.OrcamentoAberto, nullIfEmpty(c.UltimaCompra),
		nullIfEmpty(c.FamiliaProdutos), nullIfEmpty(c.Status), nullIfEmpty(c.Regiao),
		c.VendedorID)
	if err != nil {
		t.Fatalf("insert cliente: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func insertProduto(t *testing.T, s *Store, p Produto) int64 {
	t.Helper()
	res, err := s.db.Exec(`
		INSERT INTO produtos (nome, familia, categoria, preco_base)
		VALUES (?, ?, ?, ?)`,
		p.Nome, nullIfEmpty(p.Familia), nullIfEmpty(p.Categoria), p.PrecoBase)
	if err != nil {
		t.Fatalf("insert produto: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func insertVendedor(t *testing.T, s *Store, v Vendedor) int64 {
	t.Helper()
	created, err := s.CreateVendedor(context.Background(), v)
	if err != nil {
		t.Fatalf("insert vendedor: %v", err)
	}
	return created.ID
}

func insertPedido(t *testing.T, s *Store, p Pedido) int64 {
	t.Helper()
	res, err := s.db.Exec(`
		INSERT INTO pedidos (cliente_id, produto_id, vendedor_id, valor, data_pedido, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ClienteID, p.ProdutoID, p.VendedorID, p.Valor, p.DataPedido, nullIfEmpty(p.Status))
	if err != nil {
		t.Fatalf("insert pedido: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store_test.db")

	s1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	// Reopening must not fail on the existing schema.
	s2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}

func TestClientesEmptyReturnsEmptySlice(t *testing.T) {
	s := newTestStore(t)

	clientes, err := s.Clientes(context.Background())
	if err != nil {
		t.Fatalf("Clientes: %v", err)
	}
	if clientes == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(clientes) != 0 {
		t.Fatalf("expected 0 clients, got %d", len(clientes))
	}
}

func TestClientePorIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ClientePorID(context.Background(), 999)
	if err == nil {
		t.Fatal("expected error for missing client")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPedidosLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	clienteID := insertCliente(t, s, Cliente{Nome: "Usinagem Alfa"})
	for i := 1; i <= 5; i++ {
		insertPedido(t, s, Pedido{ClienteID: clienteID, Valor: float64(i * 100), DataPedido: daysAgo(i)})
	}

	pedidos, err := s.Pedidos(ctx, 3)
	if err != nil {
		t.Fatalf("Pedidos: %v", err)
	}
	if len(pedidos) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(pedidos))
	}
	// Most recent first.
	if pedidos[0].DataPedido != daysAgo(1) {
		t.Errorf("first order date = %s, want %s", pedidos[0].DataPedido, daysAgo(1))
	}
}

func TestProdutosPorFamilia(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertProduto(t, s, Produto{Nome: "Fresa Topo", Familia: "fresas", Categoria: "corte"})
	insertProduto(t, s, Produto{Nome: "Broca HSS", Familia: "brocas", Categoria: "corte"})
	insertProduto(t, s, Produto{Nome: "Fresa Esferica", Familia: "fresas", Categoria: "acabamento"})

	fresas, err := s.ProdutosPorFamilia(ctx, "fresas", "")
	if err != nil {
		t.Fatalf("ProdutosPorFamilia: %v", err)
	}
	if len(fresas) != 2 {
		t.Fatalf("expected 2 fresas, got %d", len(fresas))
	}

	corte, err := s.ProdutosPorFamilia(ctx, "fresas", "corte")
	if err != nil {
		t.Fatalf("ProdutosPorFamilia: %v", err)
	}
	if len(corte) != 1 || corte[0].Nome != "Fresa Topo" {
		t.Fatalf("expected only Fresa Topo, got %v", corte)
	}

	todos, err := s.Produtos(ctx)
	if err != nil {
		t.Fatalf("Produtos: %v", err)
	}
	if len(todos) != 3 {
		t.Fatalf("expected 3 products, got %d", len(todos))
	}
}
