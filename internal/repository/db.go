package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB is the result store connection. Postgres DSNs go through a pgx pool;
// anything else is treated as a SQLite path.
type DB struct {
	drv     *entsql.Driver
	dialect string
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if isPostgres(cfg.DSN) {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(ctx, cfg, logger)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dialect", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-extractor"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	// Wrap pool as *sql.DB for Ent
	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{
		drv:     entsql.OpenDB(dialect.Postgres, db),
		dialect: dialect.Postgres,
		pool:    pool,
		logger:  logger,
	}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	path := strings.TrimPrefix(strings.TrimPrefix(cfg.DSN, "sqlite://"), "sqlite:")
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	logger.Info("opening database", "dialect", dialect.SQLite, "path", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps :memory: databases on a single connection
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &DB{
		drv:     entsql.OpenDB(dialect.SQLite, db),
		dialect: dialect.SQLite,
		logger:  logger,
	}, nil
}

// Dialect returns the ent dialect name.
func (d *DB) Dialect() string { return d.dialect }

// Close closes the database connections gracefully
func (d *DB) Close() {
	d.logger.Info("closing database connections")
	if err := d.drv.Close(); err != nil {
		d.logger.Error("failed to close driver", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	d.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.drv.DB().PingContext(ctx); err != nil {
		return err
	}
	d.logger.Debug("database ping successful")
	return nil
}

// resultColumnDefs is the invoice_results layout. The types are accepted by both SQLite and Postgres.
var resultColumnDefs = []struct{ name, def string }{
	{colID, "TEXT NOT NULL PRIMARY KEY"},
	{colRunID, "TEXT NOT NULL"},
	{colSourcePath, "TEXT NOT NULL"},
	{colSourceFile, "TEXT NOT NULL"},
	{colInvoiceNumber, "TEXT"},
	{colInvoiceDate, "TEXT"},
	{colInvoiceID, "TEXT"},
	{colTotalAmount, "DOUBLE PRECISION"},
	{colMethod, "TEXT NOT NULL DEFAULT ''"},
	{colScore, "INTEGER NOT NULL DEFAULT 0"},
	{colEscalated, "INTEGER NOT NULL DEFAULT 0"},
	{colStatus, "TEXT NOT NULL"},
	{colError, "TEXT"},
	{colDurationMS, "BIGINT NOT NULL DEFAULT 0"},
	{colCreatedAt, "TEXT NOT NULL"},
}

func createResultsTable() string {
	defs := make([]string, len(resultColumnDefs))
	for i, c := range resultColumnDefs {
		defs[i] = c.name + " " + c.def
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableResults, strings.Join(defs, ", "))
}

// Migrate creates the result table and its indexes when missing.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		createResultsTable(),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%[1]s_run ON %[1]s (%[2]s)", tableResults, colRunID),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%[1]s_source ON %[1]s (%[2]s, %[3]s)", tableResults, colSourcePath, colCreatedAt),
	}
	for _, q := range stmts {
		if err := d.drv.Exec(ctx, q, []any{}, nil); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	d.logger.Debug("schema migrated", "table", tableResults)
	return nil
}
