package partition

import "fmt"

// WriteError reports a storage-layer failure writing one partition unit.
// Sibling partitions from the same invocation are unaffected; callers see
// which partitions succeeded alongside this error.
type WriteError struct {
	Dataset string
	Key     Key
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("partition write %s/%s: %v", e.Dataset, e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
