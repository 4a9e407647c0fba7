package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/af-corp/shetkari-gateway/internal/cache"
	"github.com/af-corp/shetkari-gateway/internal/config"
	"github.com/af-corp/shetkari-gateway/internal/filter"
	"github.com/af-corp/shetkari-gateway/internal/filter/injection"
	"github.com/af-corp/shetkari-gateway/internal/filter/policy"
	"github.com/af-corp/shetkari-gateway/internal/filter/secrets"
	"github.com/af-corp/shetkari-gateway/internal/gateway"
	"github.com/af-corp/shetkari-gateway/internal/gemini"
	"github.com/af-corp/shetkari-gateway/internal/ratelimit"
	"github.com/af-corp/shetkari-gateway/internal/telemetry"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	bootstrap := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	loader := config.NewLoader(*configDir, bootstrap)
	if err := loader.Load(); err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(loader.Config().Telemetry)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, loader, logger); err != nil {
		logger.Error("gateway exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("gateway stopped")
}

func run(ctx context.Context, loader *config.Loader, logger *slog.Logger) error {
	if err := loader.Watch(ctx); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}
	cfg := loader.Config()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	metrics := telemetry.NewMetrics()
	rdb := connectRedis(ctx, cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	store, err := cache.Open(ctx, cfg, rdb)
	if err != nil {
		return fmt.Errorf("open response cache: %w", err)
	}
	defer store.Close()
	logger.Info("response cache ready", "backend", cfg.Cache.Backend)

	client, err := gemini.NewFromConfig(ctx, cfg.Gemini, gemini.Options{
		Cache:   cache.New(store, logger, metrics),
		Models:  loader.Models,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	if !client.Configured() {
		logger.Warn("GEMINI_API_KEY not set, AI endpoints will return errors")
	}

	chain := buildFilterChain(ctx, loader, logger)
	limiter := ratelimit.NewLimiter(rdb)
	rateLimit := ratelimit.Middleware(limiter, func() config.RateLimitConfig {
		return loader.Config().RateLimit
	}, metrics)

	handler := gateway.NewHandler(client, loader.Config, chain, metrics)
	router := gateway.NewRouter(handler, cfg, rateLimit)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Telemetry.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Telemetry.MetricsPort),
			Handler: mux,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gateway starting", "addr", addr, "version", version, "env", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("metrics server starting", "addr", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			err = errors.Join(err, metricsSrv.Shutdown(shutdownCtx))
		}
		if err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newLogger(cfg config.TelemetryConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if len(cfg.Addresses) == 0 || cfg.Addresses[0] == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addresses[0],
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable (shared cache and rate limits disabled)", "error", err)
		rdb.Close()
		return nil
	}
	logger.Info("redis connected", "addr", cfg.Addresses[0])
	return rdb
}

// buildFilterChain assembles secrets, injection and policy filters. The
// policy filter is left out when its bundle fails to compile, since an
// unloaded evaluator denies everything.
func buildFilterChain(ctx context.Context, loader *config.Loader, logger *slog.Logger) *filter.Chain {
	filters := []filter.Filter{
		secrets.NewScanner(func() config.SecretsFilterConfig { return loader.Config().Filter.Secrets }),
		injection.NewScanner(func() config.InjectionFilterConfig { return loader.Config().Filter.Injection }),
	}

	evaluator := policy.NewEvaluator(func() config.PolicyFilterConfig { return loader.Config().Filter.Policy })
	if evaluator.Enabled() {
		if err := evaluator.Load(ctx); err != nil {
			logger.Warn("policy filter disabled", "error", err)
		} else if !evaluator.Loaded() {
			logger.Warn("policy filter disabled: empty bundle")
		} else {
			filters = append(filters, evaluator)
			loader.OnReload(func() {
				if err := evaluator.Load(context.Background()); err != nil {
					logger.Error("failed to reload policies, keeping previous bundle", "error", err)
				}
			})
		}
	}
	return filter.NewChain(filters...)
}
