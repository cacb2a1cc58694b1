// Command server exposes the playbook backtest over HTTP and WebSocket:
//   - POST /api/v1/backtests        run a config, JSON result
//   - GET  /api/v1/backtests/stream  stream day rows then the summary
//   - GET  /metrics, /health
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"playbook-lab/internal/api"
	"playbook-lab/internal/backtest"
	"playbook-lab/internal/config"
	"playbook-lab/internal/observability"
	"playbook-lab/internal/stores"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	addr := flag.String("addr", config.EnvOr("PLAYBOOK_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	barsFile := flag.String("bars", "", "Bars export (.csv or .parquet) served from memory instead of the databases")
	indicatorsFile := flag.String("indicators", "", "Daily indicators export (.csv or .parquet)")
	migrate := flag.Bool("migrate", false, "Apply database migrations on startup")
	cacheTTL := flag.Duration("cache-ttl", 10*time.Minute, "Backtest result cache TTL (0 keeps entries forever)")
	origins := flag.String("cors-origins", os.Getenv("PLAYBOOK_CORS_ORIGINS"), "Comma-separated allowed CORS origins (empty allows all)")
	accessLog := flag.Bool("access-log", true, "Log every HTTP request")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := observability.NewMetrics("", nil)

	set, cleanup, err := stores.Open(ctx, stores.Options{
		BarsFile:       *barsFile,
		IndicatorsFile: *indicatorsFile,
		PostgresDSN:    *postgresDSN,
		ClickhouseDSN:  *clickhouseDSN,
		Migrate:        *migrate,
		Metrics:        m,
	})
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()
	if *barsFile != "" {
		logger.Printf("Serving %d bars and %d indicator days from memory", set.Loaded.Bars, set.Loaded.Indicators)
	}

	runner := backtest.NewRunner(set.Bars, set.Indicators,
		backtest.WithCache(backtest.NewResultCache(*cacheTTL)),
		backtest.WithMetrics(m),
	)
	handler := api.NewHandler(api.NewBacktestHandler(runner, m, logger), api.RouterOptions{
		Metrics:        m,
		MetricsHandler: observability.Handler(),
		AllowedOrigins: splitOrigins(*origins),
		AccessLog:      *accessLog,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Starting HTTP server on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		if err != nil {
			logger.Printf("HTTP server error: %v", err)
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Graceful shutdown failed: %v", err)
	}

	logger.Println("Shutdown complete")
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
