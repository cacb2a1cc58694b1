// Command backtest runs the playbook over stored or exported bars and prints
// the result as tables, JSON or CSV.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"playbook-lab/internal/api"
	"playbook-lab/internal/backtest"
	"playbook-lab/internal/config"
	"playbook-lab/internal/reporting"
	"playbook-lab/internal/stores"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	// Run parameters
	configPath := flag.String("config", os.Getenv("PLAYBOOK_CONFIG"), "YAML config file")
	overrides := config.BindFlags(flag.CommandLine)

	// Storage
	barsFile := flag.String("bars", "", "Bars export (.csv or .parquet); loads into memory instead of the databases")
	indicatorsFile := flag.String("indicators", "", "Daily indicators export (.csv or .parquet)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	csvPath := flag.String("csv", "", "Also write the day table to this CSV file")

	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	cfg, err := overrides.Resolve(*configPath)
	if err != nil {
		logger.Fatalf("Config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Println("Received shutdown signal")
		cancel()
	}()

	set, cleanup, err := stores.Open(ctx, stores.Options{
		BarsFile:       *barsFile,
		IndicatorsFile: *indicatorsFile,
		PostgresDSN:    *postgresDSN,
		ClickhouseDSN:  *clickhouseDSN,
	})
	if err != nil {
		logger.Fatalf("Failed to open stores: %v", err)
	}
	defer cleanup()
	if *barsFile != "" {
		logger.Printf("Loaded %d bars and %d indicator days", set.Loaded.Bars, set.Loaded.Indicators)
	}

	result, err := backtest.NewRunner(set.Bars, set.Indicators).Run(ctx, cfg)
	if err != nil {
		logger.Fatalf("Backtest failed: %v", err)
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, result); err != nil {
			logger.Fatalf("Write CSV: %v", err)
		}
		logger.Printf("Wrote %s", *csvPath)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(api.NewBacktestResponse(result)); err != nil {
			logger.Fatalf("Encode JSON: %v", err)
		}
		return
	}
	fmt.Print(render(result))
}

func writeCSV(path string, result *backtest.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := reporting.WriteCSV(f, result.Rows, len(result.Targets)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
