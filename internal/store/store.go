// Package store provides the SQLite-backed business data store: clientes,
// produtos, pedidos, vendedores and users, plus the parameterized query
// functions the analysis tools and the dashboard are built on.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver for database/sql
)

// DateLayout is the storage format for business dates (ISO, lexicographically
// ordered, so range predicates work on TEXT columns).
const DateLayout = "2006-01-02"

// Store wraps the business database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the business database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// New wraps an existing database handle. The caller retains ownership of db.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// DB exposes the underlying handle so collaborating stores (chat history)
// can share the same database file and transaction domain.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vendedores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nome TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		telefone TEXT,
		regiao_atuacao TEXT,
		meta_mensal REAL DEFAULT 0,
		comissao_percentual REAL DEFAULT 0,
		status TEXT,
		data_contratacao TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS clientes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nome TEXT NOT NULL,
		grupo TEXT,
		potencial REAL DEFAULT 0,
		orcamento_aberto REAL DEFAULT 0,
		meta REAL DEFAULT 0,
		ultima_compra TEXT,
		ultima_visita TEXT,
		valor_testes REAL DEFAULT 0,
		maquinario TEXT,
		material_usinado TEXT,
		tipo_servico TEXT,
		familia_produtos TEXT,
		status TEXT,
		regiao TEXT,
		vendedor_id INTEGER REFERENCES vendedores(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_clientes_ultima_compra ON clientes(ultima_compra);
	CREATE INDEX IF NOT EXISTS idx_clientes_status ON clientes(status);

	CREATE TABLE IF NOT EXISTS produtos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nome TEXT NOT NULL,
		familia TEXT,
		categoria TEXT,
		descricao TEXT,
		preco_base REAL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS pedidos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cliente_id INTEGER REFERENCES clientes(id) ON DELETE CASCADE,
		produto_id INTEGER REFERENCES produtos(id) ON DELETE SET NULL,
		vendedor_id INTEGER REFERENCES vendedores(id),
		valor REAL NOT NULL,
		data_pedido TEXT NOT NULL,
		status TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_pedidos_cliente ON pedidos(cliente_id, data_pedido);
	CREATE INDEX IF NOT EXISTS idx_pedidos_data ON pedidos(data_pedido);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		nome TEXT NOT NULL,
		role TEXT NOT NULL,
		vendedor_id INTEGER REFERENCES vendedores(id),
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}
