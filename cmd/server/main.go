package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/catalogo/internal/config"
	"github.com/JonMunkholm/catalogo/internal/core"
	"github.com/JonMunkholm/catalogo/internal/logging"
	"github.com/JonMunkholm/catalogo/internal/observability"
	"github.com/JonMunkholm/catalogo/internal/session"
	"github.com/JonMunkholm/catalogo/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	// Export audit log: PostgreSQL when configured, memory otherwise
	var audit core.AuditLog = core.NewMemoryAuditLog(500)
	if cfg.Database.URL != "" {
		pool, err := connectDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pgAudit := core.NewPgAuditLog(pool)
		if err := pgAudit.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare audit table", "error", err)
			os.Exit(1)
		}
		audit = pgAudit
	}

	// Background jobs and the server stop on SIGINT/SIGTERM
	jobCtx, cancelJobs := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancelJobs()

	// Sessions: Redis when configured, memory otherwise
	var sessions session.Store
	if cfg.Redis.URL != "" {
		client, err := connectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		sessions = session.NewRedisStore(client, cfg.Session.TTL)
	} else {
		mem := session.NewMemoryStore(cfg.Session.TTL)
		go mem.RunSweeper(jobCtx, 10*time.Minute)
		sessions = mem
	}

	metrics := observability.New()

	service, err := core.NewService(core.ServiceOptions{
		ArchiveURL: cfg.Catalog.ArchiveURL,
		EntryName:  cfg.Catalog.EntryName,
		Fetcher:    core.NewHTTPFetcher(cfg.Catalog.FetchTimeout, cfg.Catalog.MaxArchiveSize),
		Exporter: &core.Exporter{
			OrgName:  cfg.Export.OrgName,
			Subtitle: cfg.Export.Subtitle,
			Logo:     readLogo(cfg.Export.LogoPath),
		},
		Audit:   audit,
		Limiter: core.NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWait),
		Metrics: metrics,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	if cfg.Catalog.Preload {
		go func() {
			loadCtx, cancel := context.WithTimeout(jobCtx, cfg.Catalog.FetchTimeout)
			defer cancel()
			if _, err := service.Dataset(loadCtx); err != nil {
				slog.Warn("catalog preload failed; first request will retry", "error", err)
			}
		}()
	}

	go service.StartScheduler(jobCtx, core.MaintenanceConfig{
		RefreshInterval: cfg.Jobs.RefreshInterval,
		AuditRetention:  cfg.Jobs.AuditRetention,
		CheckInterval:   cfg.Jobs.CheckInterval,
	})

	server := web.NewServer(service, sessions, cfg, metrics)

	// Run blocks until a signal arrives and shutdown, including in-flight
	// exports, has finished.
	if err := server.Run(jobCtx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// connectDB opens and verifies the audit database pool.
func connectDB(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(dbCfg.MaxConns)
	poolConfig.MinConns = int32(dbCfg.MinConns)
	poolConfig.MaxConnLifetime = dbCfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbCfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(dbCfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}

// connectRedis opens and verifies the session store client.
func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	slog.Info("connected to redis", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}

// readLogo loads the PDF header logo. A missing file only drops the logo.
func readLogo(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("logo not loaded; PDF sheets will have no logo", "path", path, "error", err)
		return nil
	}
	return data
}
