package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/tabinspect/internal/table"
)

// DBTX is the subset of *pgxpool.Pool the sink needs.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// OpenPool connects to url and verifies the connection.
func OpenPool(ctx context.Context, url string, maxConns int) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresSink bulk-loads tables with COPY.
type PostgresSink struct {
	db DBTX
}

// NewPostgresSink creates a sink on db.
func NewPostgresSink(db DBTX) *PostgresSink {
	return &PostgresSink{db: db}
}

// Write creates the target table if needed and copies every row into it.
func (s *PostgresSink) Write(ctx context.Context, t *table.Table, name string) error {
	ident := pgx.Identifier{TableName(name)}

	if _, err := s.db.Exec(ctx, createTableSQL(ident, t)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	rows := pgx.CopyFromSlice(t.NumRows(), func(i int) ([]any, error) {
		row := t.Row(i)
		values := make([]any, len(row))
		for c, v := range row {
			values[c] = v.Any()
		}
		return values, nil
	})

	n, err := s.db.CopyFrom(ctx, ident, t.Names(), rows)
	if err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	if n != int64(t.NumRows()) {
		return fmt.Errorf("copied %d of %d rows", n, t.NumRows())
	}
	return nil
}

var nonIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// TableName derives a lowercase SQL table name from an output name.
func TableName(name string) string {
	s := nonIdent.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "export"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "t_" + s
	}
	return s
}

func createTableSQL(ident pgx.Identifier, t *table.Table) string {
	cols := make([]string, t.NumCols())
	for i, c := range t.Columns {
		typ := "text"
		if c.Numeric() {
			typ = "double precision"
		}
		cols[i] = pgx.Identifier{c.Name}.Sanitize() + " " + typ
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", ident.Sanitize(), strings.Join(cols, ", "))
}

// URLSink opens a pool for each Write and closes it afterwards.
type URLSink struct {
	URL      string
	MaxConns int
}

// Write opens a pool, delegates to PostgresSink and closes the pool.
func (s URLSink) Write(ctx context.Context, t *table.Table, name string) error {
	pool, err := OpenPool(ctx, s.URL, s.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	return NewPostgresSink(pool).Write(ctx, t, name)
}
