package export

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	execs   []string
	table   pgx.Identifier
	columns []string
	rows    [][]any
	copyErr error
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeDB) CopyFrom(_ context.Context, name pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.table, f.columns = name, cols
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.rows = append(f.rows, vals)
	}
	return int64(len(f.rows)), src.Err()
}

func TestTableName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Sales Q1", want: "sales_q1"},
		{in: "2024-report", want: "t_2024_report"},
		{in: "  __ ", want: "export"},
		{in: "orders", want: "orders"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TableName(tt.in))
		})
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL(pgx.Identifier{"out"}, sample())

	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "out" ("id" double precision, "name" text, "price" double precision)`, got)
}

func TestPostgresSink_Write(t *testing.T) {
	db := &fakeDB{}

	path, err := NewWriter("", WithSink(NewPostgresSink(db))).Write(context.Background(), sample(), Postgres, "Cleaned Data")

	require.NoError(t, err)
	assert.Equal(t, "postgres:cleaned_data", path)
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], `"cleaned_data"`)
	assert.Equal(t, pgx.Identifier{"cleaned_data"}, db.table)
	assert.Equal(t, []string{"id", "name", "price"}, db.columns)
	require.Len(t, db.rows, 3)
	assert.Equal(t, []any{2.0, nil, nil}, db.rows[1])
}

func TestPostgresSink_CopyError(t *testing.T) {
	db := &fakeDB{copyErr: errors.New("connection refused")}

	err := NewPostgresSink(db).Write(context.Background(), sample(), "out")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy rows")
}
