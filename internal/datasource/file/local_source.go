// Package file implements a local filesystem-backed batch source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens one raw order batch file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local source bound to the provided path. The returned
// value is safe for concurrent use as long as the path is valid for
// concurrent reads.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading.
//
// If the context is already canceled at the time of the call, Open returns
// the context error without touching the filesystem. Filesystem errors are
// wrapped with the path while staying errors.Is/As-compatible (e.g.
// errors.Is(err, os.ErrNotExist)).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
