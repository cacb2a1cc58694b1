// Command ingest loads bar and daily indicator exports into ClickHouse and
// PostgreSQL, or converts them to Parquet with --to-parquet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"playbook-lab/internal/config"
	"playbook-lab/internal/ingestion"
	"playbook-lab/internal/observability"
	"playbook-lab/internal/stores"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	barsFile := flag.String("bars", "", "Bars export (.csv or .parquet)")
	indicatorsFile := flag.String("indicators", "", "Daily indicators export (.csv or .parquet)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	migrate := flag.Bool("migrate", true, "Apply database migrations before inserting")
	batchSize := flag.Int("batch-size", ingestion.DefaultBatchSize, "Rows per insert batch")
	toParquet := flag.String("to-parquet", "", "Write bars.parquet and indicators.parquet to this directory instead of the databases")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *barsFile == "" && *indicatorsFile == "" {
		logger.Fatal("--bars or --indicators is required")
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, stopping ingestion", sig)
		cancel()
	}()

	if *toParquet != "" {
		if err := convert(ctx, *barsFile, *indicatorsFile, *toParquet, logger); err != nil {
			logger.Fatalf("Conversion failed: %v", err)
		}
		return
	}

	m := observability.NewMetrics("", nil)

	set, cleanup, err := stores.Open(ctx, stores.Options{
		PostgresDSN:   *postgresDSN,
		ClickhouseDSN: *clickhouseDSN,
		Migrate:       *migrate,
	})
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	opts := ingestion.ManagerOptions{Metrics: m, BatchSize: *batchSize}
	if *barsFile != "" {
		opts.BarSource = ingestion.FileBarSource{Path: *barsFile}
		opts.BarStore = set.Bars
	}
	if *indicatorsFile != "" {
		opts.IndicatorSource = ingestion.FileIndicatorSource{Path: *indicatorsFile}
		opts.IndicatorStore = set.Indicators
	}

	stats, err := ingestion.NewManager(opts).IngestAll(ctx)
	if err != nil {
		logger.Fatalf("Ingestion failed after %d bars: %v", stats.Bars, err)
	}
	logger.Printf("Ingested %d bars and %d indicator days", stats.Bars, stats.Indicators)
}

// convert rewrites the exports as ordered Parquet files.
func convert(ctx context.Context, barsFile, indicatorsFile, dir string, logger *log.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if barsFile != "" {
		bars, err := ingestion.FileBarSource{Path: barsFile}.Fetch(ctx)
		if err != nil {
			return err
		}
		ingestion.SortBars(bars)
		if err := ingestion.ValidateBarOrdering(bars); err != nil {
			return err
		}
		out := filepath.Join(dir, "bars.parquet")
		if err := ingestion.WriteBarsParquet(out, bars); err != nil {
			return err
		}
		logger.Printf("Wrote %d bars to %s", len(bars), out)
	}

	if indicatorsFile != "" {
		inds, err := ingestion.FileIndicatorSource{Path: indicatorsFile}.Fetch(ctx)
		if err != nil {
			return err
		}
		ingestion.SortIndicators(inds)
		if err := ingestion.ValidateIndicatorOrdering(inds); err != nil {
			return err
		}
		out := filepath.Join(dir, "indicators.parquet")
		if err := ingestion.WriteIndicatorsParquet(out, inds); err != nil {
			return err
		}
		logger.Printf("Wrote %d indicator days to %s", len(inds), out)
	}
	return nil
}
