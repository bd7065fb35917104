package config

import "testing"

func validConfig() Config {
	return Config{
		Job:    "store_sales_2025_02",
		Source: Source{Kind: "file", File: SourceFile{Path: "raw/orders.json"}},
		Sink:   Sink{Kind: "parquet", Parquet: SinkParquet{Root: "processed"}},
	}
}

func errorsAt(issues []Issue, path string) int {
	n := 0
	for _, iss := range issues {
		if iss.Path == path && iss.Severity == SeverityError {
			n++
		}
	}
	return n
}

func hasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func TestValidate_OK(t *testing.T) {
	if issues := Validate(validConfig()); hasErrors(issues) {
		t.Fatalf("valid config produced errors: %v", issues)
	}
}

/*
TestValidate_Errors runs one mutation per required field and checks the
issue lands at the expected dotted path with error severity.
*/
func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		path   string
	}{
		{"empty job", func(c *Config) { c.Job = " " }, "job"},
		{"empty source kind", func(c *Config) { c.Source.Kind = "" }, "source.kind"},
		{"file source without path", func(c *Config) { c.Source.File.Path = "" }, "source.file.path"},
		{"http source without url", func(c *Config) {
			c.Source = Source{Kind: "http"}
		}, "source.http.url"},
		{"negative retries", func(c *Config) {
			c.Source = Source{Kind: "http", HTTP: SourceHTTP{URL: "http://x", MaxRetries: -1}}
		}, "source.http.max_retries"},
		{"parquet sink without root", func(c *Config) { c.Sink.Parquet.Root = "" }, "sink.parquet.root"},
		{"postgres sink without dsn", func(c *Config) {
			c.Sink = Sink{Kind: "postgres"}
		}, "sink.postgres.dsn"},
		{"negative workers", func(c *Config) { c.Runtime.FlattenWorkers = -1 }, "runtime.flatten_workers"},
		{"datadog without addr", func(c *Config) {
			c.Metrics = Metrics{Backend: "datadog"}
		}, "metrics.statsd_addr"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(&c)
			issues := Validate(c)
			if errorsAt(issues, tc.path) == 0 {
				t.Fatalf("no error at %s; issues=%v", tc.path, issues)
			}
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	t.Run("empty sink kind defaults to parquet", func(t *testing.T) {
		c := validConfig()
		c.Sink.Kind = ""
		if issues := Validate(c); hasErrors(issues) {
			t.Fatalf("default sink kind produced errors: %v", issues)
		}
	})

	t.Run("unknown source kind is a warning", func(t *testing.T) {
		c := validConfig()
		c.Source.Kind = "s3"
		issues := Validate(c)
		if hasErrors(issues) {
			t.Fatalf("unknown source kind produced errors: %v", issues)
		}
		if len(issues) == 0 {
			t.Fatalf("unknown source kind produced no warning")
		}
	})

	t.Run("pushgateway without url is a warning", func(t *testing.T) {
		c := validConfig()
		c.Metrics = Metrics{Backend: "pushgateway"}
		issues := Validate(c)
		if hasErrors(issues) {
			t.Fatalf("pushgateway default url produced errors: %v", issues)
		}
	})
}

func TestIssueError(t *testing.T) {
	iss := Issue{Severity: SeverityError, Path: "sink.parquet.root", Message: "missing"}
	want := "error at sink.parquet.root: missing"
	if iss.Error() != want {
		t.Fatalf("Error()=%q; want %q", iss.Error(), want)
	}
}
