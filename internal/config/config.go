// Package config defines the canonical, JSON-serializable configuration
// model for the flattening pipeline. It is intentionally small, explicit,
// and dependency-free so that job configs can be loaded from disk (or other
// sources) and passed through the program without additional glue code.
//
// Output roots and table names live here and nowhere else: the batch driver
// receives a Config at construction instead of reading process-wide state.
//
// Example (trimmed):
//
//	{
//	  "job":    "store_sales_2025_02",
//	  "source": { "kind": "file", "file": { "path": "raw/orders_2025_02.json" } },
//	  "sink":   { "kind": "parquet", "parquet": { "root": "processed/store_sales" } },
//	  "runtime": { "flatten_workers": 4 }
//	}
package config

import (
	"os"
	"strconv"
)

// Datasets written by every invocation. Downstream views join the two on
// order_id and assume they share partition keys.
const (
	DatasetOrders = "fact_orders"
	DatasetItems  = "fact_order_items"
)

// Config describes one flattening job end-to-end.
type Config struct {
	// Job names the run for logs and metrics labeling.
	Job string `json:"job"`

	// Source describes where the raw order batch comes from.
	Source Source `json:"source"`

	// Sink describes where flattened fact rows are written.
	Sink Sink `json:"sink"`

	// Runtime controls concurrency inside one invocation.
	Runtime RuntimeConfig `json:"runtime"`

	// Metrics selects an optional metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Source identifies the raw input. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind"`

	File SourceFile `json:"file"`
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the raw JSON batch.
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL string `json:"url"`

	// TimeoutSeconds is the per-request timeout. Zero means the client
	// default.
	TimeoutSeconds int `json:"timeout_seconds"`

	// MaxRetries is the number of retry attempts after the initial request.
	MaxRetries int `json:"max_retries"`

	// InsecureSkipVerify disables TLS verification; useful against internal
	// test endpoints with self-signed certificates.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// Sink selects where fact rows are persisted.
type Sink struct {
	// Kind selects the sink implementation: "parquet" (default) or
	// "postgres".
	Kind string `json:"kind"`

	Parquet  SinkParquet  `json:"parquet"`
	Postgres SinkPostgres `json:"postgres"`
}

// SinkParquet configures the partitioned Parquet sink.
type SinkParquet struct {
	// Root is the output root directory; datasets are laid out underneath
	// as <root>/fact_orders/order_year=YYYY/order_month=MM/....
	Root string `json:"root"`
}

// SinkPostgres configures the Postgres sink used for local SQL exploration
// of the two fact tables.
type SinkPostgres struct {
	// DSN is the connection string for pgx/pgxpool.
	DSN string `json:"dsn"`

	// OrdersTable and ItemsTable are fully qualified table names. They
	// default to the dataset names in the public schema.
	OrdersTable string `json:"orders_table"`
	ItemsTable  string `json:"items_table"`

	// AutoCreateTable creates both fact tables when absent.
	AutoCreateTable bool `json:"auto_create_table"`
}

// RuntimeConfig controls per-invocation concurrency. Document-level
// decode/flatten work has no ordering dependency between documents, so it
// fans out across this many workers.
type RuntimeConfig struct {
	FlattenWorkers int `json:"flatten_workers"`
}

// Metrics selects the metrics backend for the run.
type Metrics struct {
	// Backend is "pushgateway", "datadog", or "none"/"" (disabled).
	Backend string `json:"backend"`

	// PushgatewayURL is the Prometheus Pushgateway base URL.
	PushgatewayURL string `json:"pushgateway_url"`

	// StatsdAddr is the DogStatsD address, e.g. "127.0.0.1:8125".
	StatsdAddr string `json:"statsd_addr"`
}

// Workers resolves the worker count: config value, then the
// FLATTEN_WORKERS environment variable, then 4 (12-factor style override,
// same scheme as the other runtime knobs). The result is never below 1;
// a zero worker limit would stall the run before its first document.
func (r RuntimeConfig) Workers() int {
	n := pickInt(r.FlattenWorkers, getenvInt("FLATTEN_WORKERS", 4))
	if n < 1 {
		return 1
	}
	return n
}

// OrdersTableName returns the configured orders table or its default.
func (p SinkPostgres) OrdersTableName() string {
	if p.OrdersTable != "" {
		return p.OrdersTable
	}
	return "public." + DatasetOrders
}

// ItemsTableName returns the configured items table or its default.
func (p SinkPostgres) ItemsTableName() string {
	if p.ItemsTable != "" {
		return p.ItemsTable
	}
	return "public." + DatasetItems
}

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
