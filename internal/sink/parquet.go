package sink

import (
	"context"

	"storesales/internal/config"
	"storesales/internal/flatten"
	"storesales/internal/partition"
)

// Parquet writes both datasets as partitioned Parquet files under a root
// directory.
type Parquet struct {
	root  string
	runID string
}

// NewParquet returns a Parquet sink rooted at root.
func NewParquet(root, runID string) *Parquet {
	return &Parquet{root: root, runID: runID}
}

func (p *Parquet) WriteOrders(ctx context.Context, rows []flatten.OrderRow) ([]partition.Result, error) {
	return partition.Write(ctx, p.root, config.DatasetOrders, p.runID, rows)
}

func (p *Parquet) WriteItems(ctx context.Context, rows []flatten.ItemRow) ([]partition.Result, error) {
	return partition.Write(ctx, p.root, config.DatasetItems, p.runID, rows)
}

func (p *Parquet) Close() {}
