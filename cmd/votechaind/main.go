// Command votechaind runs the room settlement service: it exposes the
// finalize endpoint, scores candidates through an AI oracle, and
// anchors winners on the Hedera Consensus Service.
package main

import (
	"database/sql"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"

	"github.com/ahrav/votechain/infrastructure/identity"
	"github.com/ahrav/votechain/infrastructure/ledger"
	"github.com/ahrav/votechain/infrastructure/metrics"
	"github.com/ahrav/votechain/infrastructure/oracle"
	"github.com/ahrav/votechain/infrastructure/storage"
	"github.com/ahrav/votechain/internal/config"
	"github.com/ahrav/votechain/internal/httpapi"
	"github.com/ahrav/votechain/internal/settlement"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	dbConn, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := storage.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("database schema ready", "driver", cfg.DatabaseDriver)

	store := storage.NewStore(dbConn, cfg.DatabaseDriver)
	collector := metrics.NewPrometheusMetrics()

	oracleClient, err := oracle.NewClient(cfg.Oracle.Provider, oracle.ClientConfig{
		APIKey:     cfg.Oracle.APIKey,
		Model:      cfg.Oracle.Model,
		BaseURL:    cfg.Oracle.BaseURL,
		Middleware: oracleMiddleware(cfg, collector),
	})
	if err != nil {
		slog.Error("oracle client failed", "error", err)
		os.Exit(1)
	}

	committer, err := ledger.NewCommitter(ledger.Config{
		AccountID:      cfg.Ledger.AccountID,
		PrivateKey:     cfg.Ledger.PrivateKey,
		Network:        cfg.Ledger.Network,
		RequestTimeout: 30 * time.Second,
	}, slog.Default())
	if err != nil {
		slog.Error("ledger committer failed", "error", err)
		os.Exit(1)
	}

	orchestrator := settlement.NewOrchestrator(
		store, oracleClient, committer, slog.Default(), collector)
	verifier := identity.NewJWTVerifier(cfg.AuthSecret)

	server := http.Server{
		Handler: httpapi.NewRouter(orchestrator, verifier),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		server.Close()
	}()

	slog.Info("listening",
		"port", cfg.Port,
		"oracle_provider", cfg.Oracle.Provider,
		"oracle_model", oracleClient.GetModel(),
		"ledger_network", committer.Network(),
	)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("server closed")
}

// oracleMiddleware assembles the cross-cutting chain around the oracle
// provider: metrics outermost, then retry, rate limiting, and the
// per-request timeout innermost so each retry gets a fresh deadline.
func oracleMiddleware(cfg config.Config, collector *metrics.PrometheusMetrics) []oracle.Middleware {
	chain := []oracle.Middleware{oracle.MetricsMiddleware(collector)}

	if cfg.Oracle.MaxRetries > 0 {
		chain = append(chain,
			oracle.RetryMiddleware(cfg.Oracle.MaxRetries, time.Second, 20*time.Second))
	}
	if cfg.Oracle.RequestsPerSecond > 0 {
		chain = append(chain,
			oracle.RateLimitMiddleware(rate.Limit(cfg.Oracle.RequestsPerSecond), 1))
	}
	if cfg.Oracle.Timeout > 0 {
		chain = append(chain, oracle.TimeoutMiddleware(cfg.Oracle.Timeout))
	}
	return chain
}
