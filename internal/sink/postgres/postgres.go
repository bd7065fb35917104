// Package postgres implements the Postgres fact-table sink using pgx v5.
// Rows are bulk-loaded with COPY; unlike the Parquet layout, the partition
// key columns are stored as regular columns since there is no Hive-style
// path to carry them.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storesales/internal/config"
	"storesales/internal/flatten"
	"storesales/internal/partition"
)

var ordersColumns = []string{
	"order_id", "order_date", "customer_id", "customer_country",
	"customer_segment", "sales_channel", "payment_method", "payment_status",
	"currency", "order_total", "order_year", "order_month",
}

var itemsColumns = []string{
	"order_id", "product_id", "category", "quantity", "unit_price",
	"line_total", "order_year", "order_month",
}

// Sink loads both fact tables into Postgres.
type Sink struct {
	pool *pgxpool.Pool
	cfg  config.SinkPostgres
}

// New connects a pool and, when configured, creates the fact tables.
func New(ctx context.Context, cfg config.SinkPostgres) (*Sink, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}

	s := &Sink{pool: pool, cfg: cfg}
	if cfg.AutoCreateTable {
		if err := s.ensureTables(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Sink) WriteOrders(ctx context.Context, rows []flatten.OrderRow) ([]partition.Result, error) {
	vals := make([][]any, len(rows))
	for i, r := range rows {
		vals[i] = []any{
			r.OrderID, r.OrderDate, r.CustomerID, r.CustomerCountry,
			r.CustomerSegment, r.SalesChannel, r.PaymentMethod, r.PaymentStatus,
			r.Currency, r.OrderTotal, r.OrderYear, r.OrderMonth,
		}
	}
	keys := make([]partition.Key, len(rows))
	for i, r := range rows {
		keys[i] = r.PartitionKey()
	}
	return s.copyRows(ctx, s.cfg.OrdersTableName(), config.DatasetOrders, ordersColumns, vals, keys)
}

func (s *Sink) WriteItems(ctx context.Context, rows []flatten.ItemRow) ([]partition.Result, error) {
	vals := make([][]any, len(rows))
	for i, r := range rows {
		vals[i] = []any{
			r.OrderID, r.ProductID, r.Category, r.Quantity, r.UnitPrice,
			r.LineTotal, r.OrderYear, r.OrderMonth,
		}
	}
	keys := make([]partition.Key, len(rows))
	for i, r := range rows {
		keys[i] = r.PartitionKey()
	}
	return s.copyRows(ctx, s.cfg.ItemsTableName(), config.DatasetItems, itemsColumns, vals, keys)
}

func (s *Sink) Close() { s.pool.Close() }

// copyRows bulk-loads vals via COPY and reports results broken down by the
// rows' partition keys, mirroring the Parquet sink's reporting shape.
func (s *Sink) copyRows(ctx context.Context, table, dataset string, columns []string, vals [][]any, keys []partition.Key) ([]partition.Result, error) {
	if len(vals) == 0 {
		return nil, nil
	}

	if _, err := s.pool.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(vals)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return nil, fmt.Errorf("copy into %s: %s (%s)", table, pgErr.Detail, pgErr.SQLState())
		}
		return nil, fmt.Errorf("copy into %s: %w", table, err)
	}

	perKey := make(map[partition.Key]int)
	order := make([]partition.Key, 0)
	for _, k := range keys {
		if _, seen := perKey[k]; !seen {
			order = append(order, k)
		}
		perKey[k]++
	}

	results := make([]partition.Result, 0, len(order))
	for _, k := range order {
		results = append(results, partition.Result{
			Dataset: dataset,
			Key:     k,
			Year:    k.Year,
			Month:   k.Month,
			Path:    table,
			Rows:    perKey[k],
		})
	}
	return results, nil
}

func (s *Sink) ensureTables(ctx context.Context) error {
	ordersDDL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		order_id text NOT NULL,
		order_date text,
		customer_id text,
		customer_country text,
		customer_segment text,
		sales_channel text,
		payment_method text,
		payment_status text,
		currency text,
		order_total double precision,
		order_year text NOT NULL,
		order_month text NOT NULL
	)`, pgFQN(s.cfg.OrdersTableName()))

	itemsDDL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		order_id text NOT NULL,
		product_id text,
		category text,
		quantity double precision,
		unit_price double precision,
		line_total double precision,
		order_year text NOT NULL,
		order_month text NOT NULL
	)`, pgFQN(s.cfg.ItemsTableName()))

	for _, ddl := range []string{ordersDDL, itemsDDL} {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.fact_orders"
// to "public"."fact_orders".
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
