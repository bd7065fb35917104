// Package partition writes batches of flattened fact rows as Hive-style
// partitioned Parquet files.
//
// Layout contract with the downstream catalog and query layers:
//
//	<root>/<dataset>/order_year=<YYYY>/order_month=<MM>/part-<runid>.parquet
//
// Partition key strings are always a 4-digit year and a zero-padded
// 2-digit month. The partition columns themselves are never written into
// the Parquet file schema; they exist only in the directory path, which
// keeps Hive-style schema inference from seeing duplicate columns.
package partition

import "path/filepath"

// Key is the (order_year, order_month) partition key a row is tagged with.
type Key struct {
	Year  string // 4-digit, e.g. "2025"
	Month string // 2-digit zero-padded, e.g. "02"
}

// Row is any fact row carrying its partition key.
type Row interface {
	PartitionKey() Key
}

// Path returns the relative partition directory for a dataset, e.g.
// "fact_orders/order_year=2025/order_month=02".
func (k Key) Path(dataset string) string {
	return filepath.Join(dataset, "order_year="+k.Year, "order_month="+k.Month)
}

func (k Key) String() string {
	return k.Year + "-" + k.Month
}
