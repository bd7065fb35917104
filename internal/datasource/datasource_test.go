package datasource

import (
	"testing"

	"storesales/internal/config"
	"storesales/internal/datasource/file"
	"storesales/internal/datasource/httpds"
)

func TestFromConfig(t *testing.T) {
	src, err := FromConfig(config.Source{Kind: "file", File: config.SourceFile{Path: "x.json"}})
	if err != nil {
		t.Fatalf("file source: %v", err)
	}
	if _, ok := src.(*file.Local); !ok {
		t.Fatalf("kind file built %T", src)
	}

	src, err = FromConfig(config.Source{Kind: "http", HTTP: config.SourceHTTP{URL: "http://example/x"}})
	if err != nil {
		t.Fatalf("http source: %v", err)
	}
	if _, ok := src.(*httpds.Remote); !ok {
		t.Fatalf("kind http built %T", src)
	}

	if _, err := FromConfig(config.Source{Kind: "s3"}); err == nil {
		t.Fatalf("unsupported kind accepted")
	}
}
