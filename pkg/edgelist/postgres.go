package edgelist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// Querier runs a query; *pgxpool.Pool and *pgx.Conn both satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource names a table holding one edge per row.
type PostgresSource struct {
	Table      string // may be schema-qualified, e.g. "social.edges"
	FromColumn string // defaults to "from_node"
	ToColumn   string // defaults to "to_node"
	OrderBy    string // optional column fixing row order; node order follows it
}

func (s PostgresSource) withDefaults() PostgresSource {
	if s.FromColumn == "" {
		s.FromColumn = "from_node"
	}
	if s.ToColumn == "" {
		s.ToColumn = "to_node"
	}
	return s
}

// String returns a pg:// label used in logs and errors.
func (s PostgresSource) String() string {
	return "pg://" + s.Table
}

// Query builds the SELECT statement with every identifier quoted.
func (s PostgresSource) Query() (string, error) {
	s = s.withDefaults()
	if s.Table == "" {
		return "", graph.ConfigError("postgres source", "table name is required")
	}

	table := pgx.Identifier(strings.Split(s.Table, ".")).Sanitize()
	from := pgx.Identifier{s.FromColumn}.Sanitize()
	to := pgx.Identifier{s.ToColumn}.Sanitize()

	sql := fmt.Sprintf("SELECT %s, %s FROM %s", from, to, table)
	if s.OrderBy != "" {
		sql += " ORDER BY " + pgx.Identifier{s.OrderBy}.Sanitize()
	}
	return sql, nil
}

// NewPostgresPool connects to dsn and verifies the connection.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, graph.NewError("connect postgres", graph.ErrConfig).Cause(err).Err()
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, graph.IOError("connect postgres", cfg.ConnConfig.Host, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, graph.IOError("connect postgres", cfg.ConnConfig.Host, err)
	}
	return pool, nil
}

// LoadPostgres reads every row of src into a new graph. Row numbers stand
// in for line numbers in format errors.
func LoadPostgres(ctx context.Context, q Querier, src PostgresSource) (*graph.Graph, error) {
	sql, err := src.Query()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, graph.IOError("query", src.String(), err)
	}
	defer rows.Close()

	g := graph.New()
	row := 0
	for rows.Next() {
		row++
		var u, v int64
		if err := rows.Scan(&u, &v); err != nil {
			return nil, graph.NewError("scan", graph.ErrFormat).Source(src.String()).Line(row).Cause(err).Err()
		}
		if u < 0 || v < 0 {
			return nil, graph.FormatError(src.String(), row, fmt.Sprintf("negative node id in (%d, %d)", u, v))
		}
		if err := g.AddEdge(int(u), int(v)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, graph.IOError("query", src.String(), err)
	}
	return g, nil
}
