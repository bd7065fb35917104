// Package pipeline wires the batch flattening run end-to-end: raw batch in,
// two partitioned fact datasets out.
//
// The driver is deliberately best-effort at the document level: a document
// that fails decoding or flattening is recorded in the summary and excluded
// from output, but never aborts the rest of the batch. Downstream
// expectations (partial partitions) depend on this, so do not convert it to
// fail-fast.
//
// Concurrency model:
//
//	Reader (one batch file)
//	     → N flatten workers (decode + flatten, no shared state)
//	     → per-dataset row accumulation (input-order slots, no locking)
//	     → Sink, invoked once per dataset
//
// Results land in per-document slots indexed by input position, so the
// accumulated row order — and therefore the written output — is
// deterministic regardless of worker scheduling.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"storesales/internal/config"
	"storesales/internal/datasource"
	"storesales/internal/flatten"
	"storesales/internal/metrics"
	"storesales/internal/order"
	"storesales/internal/sink"
)

// Driver executes one batch invocation. It is stateless across runs;
// construct a new one per invocation with that run's unique id.
type Driver struct {
	cfg   config.Config
	src   datasource.Source
	sink  sink.Sink
	runID string
}

// New constructs a Driver. All collaborators arrive explicitly; the driver
// reads no process-wide state.
func New(cfg config.Config, src datasource.Source, snk sink.Sink, runID string) *Driver {
	return &Driver{cfg: cfg, src: src, sink: snk, runID: runID}
}

// docResult holds the outcome for one raw document: either its flattened
// rows or a failure, never both.
type docResult struct {
	row   flatten.OrderRow
	items []flatten.ItemRow
	fail  *Failure
}

// Run reads the batch, flattens every document, and writes both datasets
// exactly once.
//
// A non-nil error alongside a non-nil Summary means partition writes
// partially failed: the summary still describes everything that was
// written. A nil Summary means the batch never got off the ground (source
// or decode-root failure).
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	workers := d.cfg.Runtime.Workers()

	start := time.Now()
	docs, err := d.readBatch(ctx)
	metrics.RecordStep(d.cfg.Job, "read", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	log.Printf("flatten runtime: job=%s workers=%d docs=%d run=%s", d.cfg.Job, workers, len(docs), d.runID)

	start = time.Now()
	results := d.flattenAll(ctx, docs, workers)
	metrics.RecordStep(d.cfg.Job, "flatten", nil, time.Since(start))

	summary := &Summary{
		Job:    d.cfg.Job,
		RunID:  d.runID,
		Status: "ok",
	}

	var (
		orderRows []flatten.OrderRow
		itemRows  []flatten.ItemRow
	)
	agg := newErrAgg(sampleLimit)
	for _, r := range results {
		if r.fail != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, *r.fail)
			agg.add(fmt.Sprintf("doc %d: %s: %s", r.fail.Index, r.fail.Stage, r.fail.Reason))
			continue
		}
		summary.Processed++
		orderRows = append(orderRows, r.row)
		itemRows = append(itemRows, r.items...)
	}
	logFailureSamples(agg)

	summary.Orders.Rows = len(orderRows)
	summary.Orders.Fingerprint = fingerprintRows(orderRows)
	summary.Items.Rows = len(itemRows)
	summary.Items.Fingerprint = fingerprintRows(itemRows)

	metrics.RecordRecords(d.cfg.Job, "processed", int64(summary.Processed))
	metrics.RecordRecords(d.cfg.Job, "failed", int64(summary.Failed))
	metrics.RecordRecords(d.cfg.Job, "order_rows", int64(len(orderRows)))
	metrics.RecordRecords(d.cfg.Job, "item_rows", int64(len(itemRows)))

	// Each dataset is written exactly once per invocation. A failed
	// partition in one dataset must not stop the other dataset's write:
	// partial success is reported, not hidden.
	var writeErrs []error

	start = time.Now()
	ordersRes, err := d.sink.WriteOrders(ctx, orderRows)
	metrics.RecordStep(d.cfg.Job, "write_orders", err, time.Since(start))
	summary.Orders.Partitions = ordersRes
	if err != nil {
		writeErrs = append(writeErrs, err)
	}

	start = time.Now()
	itemsRes, err := d.sink.WriteItems(ctx, itemRows)
	metrics.RecordStep(d.cfg.Job, "write_items", err, time.Since(start))
	summary.Items.Partitions = itemsRes
	if err != nil {
		writeErrs = append(writeErrs, err)
	}

	metrics.RecordPartitions(d.cfg.Job, int64(summary.PartitionsWritten()))

	if len(writeErrs) > 0 {
		summary.Status = "partial"
	}

	log.Printf(
		"summary: job=%s status=%s processed=%d failed=%d order_rows=%d item_rows=%d partitions=%d",
		summary.Job, summary.Status, summary.Processed, summary.Failed,
		summary.Orders.Rows, summary.Items.Rows, summary.PartitionsWritten(),
	)

	return summary, errors.Join(writeErrs...)
}

// readBatch opens the source and reads all raw documents.
func (d *Driver) readBatch(ctx context.Context) ([]map[string]any, error) {
	rc, err := d.src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("source open: %w", err)
	}
	defer rc.Close()

	docs, err := order.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return docs, nil
}

// flattenAll fans the documents out over the worker pool. Each worker
// writes only its own slot in results, so no locking is needed for the
// accumulation.
func (d *Driver) flattenAll(ctx context.Context, docs []map[string]any, workers int) []docResult {
	results := make([]docResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = docResult{fail: &Failure{Index: i, Stage: "decode", Reason: err.Error()}}
				return nil
			}
			results[i] = flattenOne(doc, i)
			return nil
		})
	}
	// Workers never return errors; per-document failures are data, not
	// control flow.
	_ = g.Wait()

	return results
}

// flattenOne runs decode + flatten for a single document.
func flattenOne(doc map[string]any, index int) docResult {
	o, err := order.Decode(doc, index)
	if err != nil {
		f := &Failure{Index: index, Stage: "decode", Reason: err.Error()}
		var mre *order.MalformedRecordError
		if errors.As(err, &mre) && !strings.HasPrefix(mre.Ref, "#") {
			f.OrderID = mre.Ref
		}
		return docResult{fail: f}
	}

	row, items, err := flatten.Flatten(o)
	if err != nil {
		return docResult{fail: &Failure{
			Index:   index,
			OrderID: o.OrderID,
			Stage:   "flatten",
			Reason:  err.Error(),
		}}
	}

	return docResult{row: row, items: items}
}

// fingerprintRows digests rows in order with xxh3 over their JSON forms.
// Useful for verifying that re-runs of the same input produce identical
// output without diffing files.
func fingerprintRows[T any](rows []T) string {
	h := xxh3.New()
	for _, r := range rows {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		h.Write(b)
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// logFailureSamples prints the first few failure messages; the rest are
// only in the summary.
func logFailureSamples(agg *errAgg) {
	if agg.count == 0 {
		return
	}
	log.Printf("document failures: %d (showing first %d)", agg.count, len(agg.first))
	for i, s := range agg.first {
		log.Printf("  #%03d: %s", i+1, s)
	}
}
