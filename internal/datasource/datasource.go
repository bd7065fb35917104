// Package datasource abstracts where a raw order batch comes from. The
// pipeline only ever sees an io.ReadCloser of JSON bytes; whether those
// bytes come from a local file or an HTTP endpoint is decided here.
package datasource

import (
	"context"
	"fmt"
	"io"

	"storesales/internal/config"
	"storesales/internal/datasource/file"
	"storesales/internal/datasource/httpds"
)

// Source is anything that can open the raw input for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FromConfig builds a Source from the job configuration.
func FromConfig(cfg config.Source) (Source, error) {
	switch cfg.Kind {
	case "file":
		return file.NewLocal(cfg.File.Path), nil
	case "http":
		return httpds.NewRemote(cfg.HTTP), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", cfg.Kind)
	}
}
