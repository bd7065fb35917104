package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"storesales/internal/config"
	"storesales/internal/datasource"
	"storesales/internal/metrics"
	"storesales/internal/metrics/datadog"
	"storesales/internal/metrics/prompush"
	"storesales/internal/pipeline"
	"storesales/internal/sink"
)

// main is the entry point for the flatten binary. It loads the job config,
// optionally initializes a metrics backend, and executes one batch run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		runIDFlg          string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/jobs/sample.json", "job config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&runIDFlg, "run-id", "", "override the generated run id (for reproducing a run)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var cfg config.Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	setupMetrics(cfg, metricsBackendFlg, pushGatewayURLFlg, *verbose)

	runID := runIDFlg
	if runID == "" {
		runID = newRunID()
	}

	ctx := context.Background()
	start := time.Now()

	src, err := datasource.FromConfig(cfg.Source)
	if err != nil {
		fatalf("source: %v", err)
	}

	snk, err := sink.New(ctx, cfg.Sink, runID)
	if err != nil {
		fatalf("sink: %v", err)
	}

	summary, runErr := pipeline.New(cfg, src, snk, runID).Run(ctx)
	if summary != nil {
		out, merr := json.MarshalIndent(summary, "", "  ")
		if merr != nil {
			log.Printf("summary: marshal error: %v", merr)
		} else {
			fmt.Println(string(out))
		}
	}

	if code := finish(snk, runErr); code != 0 {
		os.Exit(code)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// finish releases the sink, pushes any pending metrics, and maps the run
// error to an exit code. Failed runs must still flush; log.Fatalf here
// would skip both cleanups.
func finish(snk sink.Sink, runErr error) int {
	snk.Close()
	if err := metrics.Flush(); err != nil {
		log.Printf("metrics: flush error: %v", err)
	}
	if runErr != nil {
		log.Printf("%v", runErr)
		return 1
	}
	return 0
}

// setupMetrics installs the configured metrics backend.
// Precedence for the backend name: flag → config → env → none.
func setupMetrics(cfg config.Config, backendFlg, pushGatewayURLFlg string, verbose bool) {
	backendName := backendFlg
	if backendName == "" {
		backendName = cfg.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	jobName := cfg.Job
	if jobName == "" {
		jobName = "flatten_job"
	}

	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = cfg.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
		metrics.SetBackend(b)

	case "datadog":
		addr := cfg.Metrics.StatsdAddr
		if addr == "" {
			addr = os.Getenv("DD_AGENT_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}

		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			GlobalTags: []string{"job:" + jobName},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, backendName, jobName)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

// newRunID builds a unique, sortable run id: a UTC timestamp prefix for
// humans plus a uuid fragment so two runs in the same second never collide
// in the output filenames.
func newRunID() string {
	ts := time.Now().UTC().Format("20060102T150405Z")
	frag := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return ts + "-" + frag
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
