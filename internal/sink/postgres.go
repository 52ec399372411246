package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"etlgen/internal/model"
)

// pgConn is the subset of *pgxpool.Pool the sink uses.
type pgConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PostgresWriter lands each dataset in its own table via COPY. The table
// is truncated first so reruns with the same seed stay idempotent.
type PostgresWriter struct {
	conn   pgConn
	pool   *pgxpool.Pool
	prefix string
}

func NewPostgresWriter(ctx context.Context, dsn, tablePrefix string) (*PostgresWriter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresWriter{conn: pool, pool: pool, prefix: tablePrefix}, nil
}

// NewPostgresWriterWith is only for tests to inject a fake connection.
func NewPostgresWriterWith(conn pgConn, tablePrefix string) *PostgresWriter {
	return &PostgresWriter{conn: conn, prefix: tablePrefix}
}

func (p *PostgresWriter) Name() string { return "postgres" }

func (p *PostgresWriter) Location(dataset string) string {
	return "postgres://" + p.table(dataset)
}

func (p *PostgresWriter) table(dataset string) string {
	return p.prefix + dataset
}

func (p *PostgresWriter) Write(ctx context.Context, dataset string, records []model.Record) error {
	ident := pgx.Identifier{p.table(dataset)}.Sanitize()

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		customer_id    TEXT NOT NULL,
		product        TEXT NOT NULL,
		category       TEXT,
		quantity       INTEGER NOT NULL,
		unit_price     NUMERIC(10,2) NOT NULL,
		order_date     DATE NOT NULL,
		region         TEXT,
		payment_method TEXT
	)`, ident)
	if _, err := p.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if _, err := p.conn.Exec(ctx, "TRUNCATE "+ident); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			r.CustomerID,
			r.Product,
			r.Category,
			r.Quantity,
			r.UnitPrice,
			r.OrderDate,
			r.Region,
			r.PaymentMethod,
		}
	}
	n, err := p.conn.CopyFrom(ctx, pgx.Identifier{p.table(dataset)}, model.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", ident, err)
	}
	if n != int64(len(records)) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", ident, n, len(records))
	}
	return nil
}

func (p *PostgresWriter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
