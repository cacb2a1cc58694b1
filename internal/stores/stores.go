// Package stores opens the bar and indicator stores used by the commands.
// File mode loads exports into memory; database mode connects to ClickHouse
// (bars) and PostgreSQL (daily indicators).
package stores

import (
	"context"
	"errors"
	"fmt"

	"playbook-lab/internal/ingestion"
	"playbook-lab/internal/observability"
	"playbook-lab/internal/storage"
	chstore "playbook-lab/internal/storage/clickhouse"
	"playbook-lab/internal/storage/memory"
	"playbook-lab/internal/storage/migrations"
	pgstore "playbook-lab/internal/storage/postgres"
)

// ErrNoSource is returned when neither files nor DSNs are configured.
var ErrNoSource = errors.New("no data source: set --bars or both --postgres-dsn and --clickhouse-dsn")

// Options selects where the data lives.
type Options struct {
	BarsFile       string
	IndicatorsFile string

	PostgresDSN   string
	ClickhouseDSN string
	Migrate       bool

	Metrics *observability.Metrics
}

// Set holds the opened stores.
type Set struct {
	Bars       storage.BarStore
	Indicators storage.IndicatorStore

	// Loaded is filled in file mode.
	Loaded ingestion.Stats
}

// UseFiles reports whether opts selects file mode.
func (o Options) UseFiles() bool {
	return o.BarsFile != ""
}

// Open returns the stores and a cleanup func that releases connections.
func Open(ctx context.Context, opts Options) (*Set, func(), error) {
	if opts.UseFiles() {
		return openFiles(ctx, opts)
	}
	if opts.PostgresDSN == "" || opts.ClickhouseDSN == "" {
		return nil, nil, ErrNoSource
	}
	return openDatabases(ctx, opts)
}

func openFiles(ctx context.Context, opts Options) (*Set, func(), error) {
	set := &Set{
		Bars:       memory.NewBarStore(),
		Indicators: memory.NewIndicatorStore(),
	}

	mopts := ingestion.ManagerOptions{
		BarSource: ingestion.FileBarSource{Path: opts.BarsFile},
		BarStore:  set.Bars,
		Metrics:   opts.Metrics,
	}
	if opts.IndicatorsFile != "" {
		mopts.IndicatorSource = ingestion.FileIndicatorSource{Path: opts.IndicatorsFile}
		mopts.IndicatorStore = set.Indicators
	}

	stats, err := ingestion.NewManager(mopts).IngestAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load files: %w", err)
	}
	set.Loaded = stats
	return set, func() {}, nil
}

func openDatabases(ctx context.Context, opts Options) (*Set, func(), error) {
	pool, err := pgstore.NewPool(ctx, opts.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	var conn *chstore.Conn
	if opts.Migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		conn, err = migrations.RunClickhouseMigrations(ctx, opts.ClickhouseDSN)
	} else {
		conn, err = chstore.NewConn(ctx, opts.ClickhouseDSN)
	}
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	set := &Set{
		Bars:       chstore.NewBarStore(conn),
		Indicators: pgstore.NewIndicatorStore(pool),
	}
	cleanup := func() {
		conn.Close()
		pool.Close()
	}
	return set, cleanup, nil
}
