package graph

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Registered drivers: "mysql" and "sqlite" (pure Go)
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const DefaultSQLDriver = "sqlite"

const createVertices = `CREATE TABLE IF NOT EXISTS vertices (
  id BIGINT NOT NULL PRIMARY KEY
)`

const createEdges = `CREATE TABLE IF NOT EXISTS edges (
  src BIGINT NOT NULL,
  dst BIGINT NOT NULL
)`

// Only SQLite accepts IF NOT EXISTS on indexes
var sqliteIndexes = []string{
	`CREATE INDEX IF NOT EXISTS edges_src ON edges (src)`,
	`CREATE INDEX IF NOT EXISTS edges_dst ON edges (dst)`,
}

// SQLStore reads a graph kept in a vertices/edges table pair.
// Vertex iteration holds a cursor open while edge queries run, so the
// pool must allow at least two connections.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQLStore opens dsn with driver ("sqlite" or "mysql") and checks the
// connection.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver == "" {
		driver = DefaultSQLDriver
	}
	if driver == "sqlite" && isMemoryDSN(dsn) {
		return nil, fmt.Errorf("sql store: in-memory sqlite %q is not shared between connections, use a file", dsn)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql store: open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sql store: ping %s: %w", driver, err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func isMemoryDSN(dsn string) bool {
	return dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func (s *SQLStore) CreateSchema(ctx context.Context) error {
	statements := []string{createVertices, createEdges}
	if s.driver == "sqlite" {
		statements = append(statements, sqliteIndexes...)
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sql store: create schema: %w", err)
		}
	}
	return nil
}

// Import writes every vertex and edge of g in a single transaction
func (s *SQLStore) Import(ctx context.Context, g *Memory) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sql store: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	vertexStmt, err := tx.PrepareContext(ctx, "INSERT INTO vertices (id) VALUES (?)")
	if err != nil {
		return fmt.Errorf("sql store: prepare vertices: %w", err)
	}
	defer vertexStmt.Close()
	edgeStmt, err := tx.PrepareContext(ctx, "INSERT INTO edges (src, dst) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("sql store: prepare edges: %w", err)
	}
	defer edgeStmt.Close()

	for _, id := range g.IDs() {
		if _, err = vertexStmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("sql store: insert vertex %d: %w", id, err)
		}
		for _, to := range g.Successors(id) {
			if _, err = edgeStmt.ExecContext(ctx, id, to); err != nil {
				return fmt.Errorf("sql store: insert edge %d -> %d: %w", id, to, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sql store: commit: %w", err)
	}
	return nil
}

func (s *SQLStore) Vertices(ctx context.Context) (VertexIterator, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM vertices ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("sql store: query vertices: %w", err)
	}
	return &sqlVertices{s: s, rows: rows}, nil
}

type sqlVertex struct {
	s  *SQLStore
	id int64
}

func (v sqlVertex) ID() int64 { return v.id }

func (v sqlVertex) OutEdges(ctx context.Context) (EdgeIterator, error) {
	return v.s.edges(ctx, "SELECT src FROM edges WHERE src = ?", v.id)
}

func (v sqlVertex) InEdges(ctx context.Context) (EdgeIterator, error) {
	return v.s.edges(ctx, "SELECT src FROM edges WHERE dst = ? ORDER BY src", v.id)
}

func (s *SQLStore) edges(ctx context.Context, query string, id int64) (EdgeIterator, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("sql store: query edges of %d: %w", id, err)
	}
	return &sqlEdges{s: s, rows: rows}, nil
}

type sqlEdge struct{ from sqlVertex }

func (e sqlEdge) Source() Vertex { return e.from }

type sqlVertices struct {
	s    *SQLStore
	rows *sql.Rows
	cur  int64
	err  error
}

func (it *sqlVertices) Next() bool {
	if it.err != nil || !it.rows.Next() {
		return false
	}
	if err := it.rows.Scan(&it.cur); err != nil {
		it.err = err
		return false
	}
	return true
}

func (it *sqlVertices) Vertex() Vertex { return sqlVertex{s: it.s, id: it.cur} }

func (it *sqlVertices) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.rows.Err()
}

func (it *sqlVertices) Close() error { return it.rows.Close() }

type sqlEdges struct {
	s    *SQLStore
	rows *sql.Rows
	cur  int64
	err  error
}

func (it *sqlEdges) Next() bool {
	if it.err != nil || !it.rows.Next() {
		return false
	}
	if err := it.rows.Scan(&it.cur); err != nil {
		it.err = err
		return false
	}
	return true
}

func (it *sqlEdges) Edge() Edge { return sqlEdge{from: sqlVertex{s: it.s, id: it.cur}} }

func (it *sqlEdges) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.rows.Err()
}

func (it *sqlEdges) Close() error { return it.rows.Close() }
