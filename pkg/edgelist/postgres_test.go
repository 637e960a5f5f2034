package edgelist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// fakeRows serves int64 pairs through the pgx.Rows interface.
type fakeRows struct {
	data   [][2]int64
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if len(dest) != 2 {
		return fmt.Errorf("expected 2 destinations, got %d", len(dest))
	}
	row := r.data[r.pos-1]
	*dest[0].(*int64) = row[0]
	*dest[1].(*int64) = row[1]
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	row := r.data[r.pos-1]
	return []any{row[0], row[1]}, nil
}

type fakeQuerier struct {
	rows    *fakeRows
	err     error
	lastSQL string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestPostgresSource_Query(t *testing.T) {
	sql, err := PostgresSource{Table: "social.edges", OrderBy: "id"}.Query()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "from_node", "to_node" FROM "social"."edges" ORDER BY "id"`, sql)

	sql, err = PostgresSource{Table: `we"ird`, FromColumn: "a", ToColumn: "b"}.Query()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "a", "b" FROM "we""ird"`, sql)

	_, err = PostgresSource{}.Query()
	assert.True(t, errors.Is(err, graph.ErrConfig))
}

func TestLoadPostgres(t *testing.T) {
	rows := &fakeRows{data: [][2]int64{{0, 1}, {1, 2}, {2, 0}, {3, 4}}}
	q := &fakeQuerier{rows: rows}

	g, err := LoadPostgres(context.Background(), q, PostgresSource{Table: "edges"})
	require.NoError(t, err)

	assert.Equal(t, 5, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())
	assert.True(t, rows.closed)
	assert.Contains(t, q.lastSQL, `FROM "edges"`)
}

func TestLoadPostgres_NegativeID(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][2]int64{{0, 1}, {2, -3}}}}

	_, err := LoadPostgres(context.Background(), q, PostgresSource{Table: "edges"})
	require.True(t, errors.Is(err, graph.ErrFormat), "got %v", err)

	var gerr *graph.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, 2, gerr.Line)
}

func TestLoadPostgres_Errors(t *testing.T) {
	_, err := LoadPostgres(context.Background(), &fakeQuerier{err: errors.New("no such table")}, PostgresSource{Table: "edges"})
	assert.True(t, errors.Is(err, graph.ErrIO), "got %v", err)

	q := &fakeQuerier{rows: &fakeRows{err: errors.New("connection reset")}}
	_, err = LoadPostgres(context.Background(), q, PostgresSource{Table: "edges"})
	assert.True(t, errors.Is(err, graph.ErrIO), "got %v", err)
}
