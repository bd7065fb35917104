package pipeline

import "storesales/internal/partition"

// Failure records one raw document that could not be decoded or flattened.
// The document is excluded from every output dataset; no partial rows are
// ever emitted for it.
type Failure struct {
	// Index is the document's zero-based position in the batch.
	Index int `json:"index"`

	// OrderID is the offending order id when one was readable, else "".
	OrderID string `json:"order_id,omitempty"`

	// Stage is "decode" or "flatten".
	Stage string `json:"stage"`

	Reason string `json:"reason"`
}

// DatasetSummary reports what one dataset received from the batch.
type DatasetSummary struct {
	Rows       int                `json:"rows"`
	Partitions []partition.Result `json:"partitions"`

	// Fingerprint is an xxh3 digest over the dataset's rows in input
	// order; two runs over the same input produce the same value.
	Fingerprint string `json:"fingerprint"`
}

// Summary is the batch's sole user-visible signal: counts of records
// processed and failed (with reasons) and the partitions written.
type Summary struct {
	Job   string `json:"job"`
	RunID string `json:"run_id"`

	// Status is "ok", or "partial" when at least one partition write
	// failed while siblings succeeded.
	Status string `json:"status"`

	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`

	Orders DatasetSummary `json:"fact_orders"`
	Items  DatasetSummary `json:"fact_order_items"`
}

// PartitionsWritten counts partition units across both datasets.
func (s *Summary) PartitionsWritten() int {
	return len(s.Orders.Partitions) + len(s.Items.Partitions)
}
