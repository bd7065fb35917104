// Package sink persists flattened fact rows. The default backend writes
// Hive-partitioned Parquet files; a Postgres backend exists for loading the
// same two fact tables into a database for local SQL exploration.
//
// The batch driver depends only on the Sink interface, mirroring the
// repository abstraction used by the storage layer this package grew out
// of: backend-specific dependencies stay in their own packages.
package sink

import (
	"context"
	"fmt"

	"storesales/internal/config"
	"storesales/internal/flatten"
	"storesales/internal/partition"
	"storesales/internal/sink/postgres"
)

// Sink writes one invocation's accumulated rows, one call per dataset.
type Sink interface {
	// WriteOrders persists the fact_orders rows and reports what was
	// written per partition. A non-nil error may accompany partial
	// results.
	WriteOrders(ctx context.Context, rows []flatten.OrderRow) ([]partition.Result, error)

	// WriteItems persists the fact_order_items rows.
	WriteItems(ctx context.Context, rows []flatten.ItemRow) ([]partition.Result, error)

	// Close releases backend resources.
	Close()
}

// New constructs the sink selected by cfg. runID must be unique per
// invocation; file-producing backends embed it in output names so
// concurrent and repeated invocations never clobber each other.
func New(ctx context.Context, cfg config.Sink, runID string) (Sink, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = "parquet"
	}

	switch kind {
	case "parquet":
		return NewParquet(cfg.Parquet.Root, runID), nil
	case "postgres":
		return postgres.New(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unsupported sink.kind=%s", kind)
	}
}
