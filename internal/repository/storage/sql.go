package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	// register the postgres and sqlite3 drivers with the database/sql package.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect covers the differences between the SQL engines the games table lives in.
type Dialect struct {
	Name string

	// LockClause is appended to a SELECT that must lock the row until the transaction ends.
	LockClause string

	numberedPlaceholders bool
	sequenceColumn       string
}

var (
	Postgres = Dialect{
		Name:                 "postgres",
		LockClause:           " FOR UPDATE",
		numberedPlaceholders: true,
		sequenceColumn:       "seq BIGSERIAL PRIMARY KEY",
	}

	// SQLite relies on immediate transactions instead of row locks, see NewSQLiteStorage.
	SQLite = Dialect{
		Name:           "sqlite3",
		sequenceColumn: "seq INTEGER PRIMARY KEY AUTOINCREMENT",
	}
)

// Rebind rewrites the ? placeholders of query into the dialect's syntax.
func (that Dialect) Rebind(query string) string {
	if !that.numberedPlaceholders {
		return query
	}

	var (
		builder strings.Builder
		n       int
	)

	for _, r := range query {
		if r != '?' {
			builder.WriteRune(r)

			continue
		}

		n++
		builder.WriteByte('$')
		builder.WriteString(strconv.Itoa(n))
	}

	return builder.String()
}

type SQLStorage struct {
	Connection *sql.DB
	Dialect    Dialect
}

func NewPostgresStorage(ctx context.Context, dsn string, maxOpenConns int) (*SQLStorage, error) {
	conn, err := sql.Open(Postgres.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxOpenConns)

	return connect(ctx, conn, Postgres)
}

// NewSQLiteStorage opens the database file at path. Every transaction takes the write lock when it begins,
// so a read-modify-write inside one transaction cannot interleave with another.
func NewSQLiteStorage(ctx context.Context, path string) (*SQLStorage, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000", path)

	conn, err := sql.Open(SQLite.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	return connect(ctx, conn, SQLite)
}

func connect(ctx context.Context, conn *sql.DB, dialect Dialect) (*SQLStorage, error) {
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &SQLStorage{Connection: conn, Dialect: dialect}, nil
}

// Init creates the games table when it does not exist yet.
func (that *SQLStorage) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS games (
		` + that.Dialect.sequenceColumn + `,
		id TEXT NOT NULL UNIQUE,
		"columns" INTEGER NOT NULL,
		"rows" INTEGER NOT NULL,
		players TEXT NOT NULL,
		board TEXT NOT NULL,
		moves TEXT NOT NULL,
		current_player TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		winner TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := that.Connection.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}

func (that *SQLStorage) Close() error {
	return that.Connection.Close()
}
