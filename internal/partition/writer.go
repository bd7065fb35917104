package partition

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
)

// Result describes one partition unit written by a single invocation.
type Result struct {
	Dataset string `json:"dataset"`
	Key     Key    `json:"-"`
	Year    string `json:"order_year"`
	Month   string `json:"order_month"`
	Path    string `json:"path"`
	Rows    int    `json:"rows"`
}

// Write groups rows by partition key and writes one snappy-compressed
// Parquet file per partition under root.
//
// Guarantees:
//
//   - Writing one partition never touches sibling partitions; directories
//     are created with MkdirAll, which is safe under concurrent invocations
//     targeting the same partition.
//   - File names embed runID, so re-invocations append new files instead of
//     overwriting earlier output (append-by-new-file).
//   - A failed partition is reported and its partial file removed, but the
//     remaining partitions are still attempted. Partial success is returned
//     as successful Results alongside a non-nil error.
//
// Partitions are processed in sorted key order so output is deterministic
// for a given input batch.
func Write[T Row](ctx context.Context, root, dataset, runID string, rows []T) ([]Result, error) {
	groups := make(map[Key][]T)
	for _, r := range rows {
		k := r.PartitionKey()
		groups[k] = append(groups[k], r)
	}

	keys := make([]Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Month < keys[j].Month
	})

	var (
		results []Result
		errs    []error
	)
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		path, err := writeOne(root, dataset, runID, k, groups[k])
		if err != nil {
			errs = append(errs, &WriteError{Dataset: dataset, Key: k, Err: err})
			continue
		}

		log.Printf("partition: wrote %s rows=%d", path, len(groups[k]))
		results = append(results, Result{
			Dataset: dataset,
			Key:     k,
			Year:    k.Year,
			Month:   k.Month,
			Path:    path,
			Rows:    len(groups[k]),
		})
	}

	return results, errors.Join(errs...)
}

// writeOne writes a single partition file and returns its path relative to
// root. The file is written under a temporary name and renamed into place
// only after a clean close, so readers never observe a partial file.
func writeOne[T Row](root, dataset, runID string, k Key, rows []T) (string, error) {
	dir := filepath.Join(root, k.Path(dataset))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	rel := filepath.Join(k.Path(dataset), "part-"+runID+".parquet")
	final := filepath.Join(root, rel)
	tmp := final + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}

	pw := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Snappy))
	if _, err := pw.Write(rows); err != nil {
		pw.Close()
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("parquet write: %w", err)
	}
	if err := pw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("parquet close: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close %s: %w", tmp, err)
	}

	// runID is unique per invocation, so the final name cannot collide with
	// another invocation's output.
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", final, err)
	}
	return rel, nil
}
