package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"print-personalizer/internal/config"
	"print-personalizer/internal/coords"
	"print-personalizer/internal/design"
	"print-personalizer/internal/handlers"
	"print-personalizer/internal/pricing"
	"print-personalizer/internal/storage"
	"print-personalizer/internal/storage/migrations"
	storageredis "print-personalizer/internal/storage/redis"
	"print-personalizer/pkg/api"
	"print-personalizer/pkg/logger"
	"print-personalizer/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const usage = `usage: personalizer [command]

commands:
  serve            run the HTTP API (default)
  migrate [up|down|status]
                   manage schema migrations and exit (default up)
  migrate-areas    convert legacy pixel print areas to percentages
                   (-dry-run to only report)
  invalidate-cache <product-id>...
                   drop cached products and pricing rules after an edit`

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	zapLogger, err := logger.New(cfg.LogLevel, !cfg.IsProduction())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command, args := "serve", []string(nil)
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	switch command {
	case "serve":
		err = serve(ctx, cfg, zapLogger)
	case "migrate":
		err = migrate(ctx, cfg, args, zapLogger)
	case "migrate-areas":
		err = migrateAreas(ctx, cfg, args, zapLogger)
	case "invalidate-cache":
		err = invalidateCache(ctx, cfg, args, zapLogger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	if err != nil {
		zapLogger.Error("command failed", zap.String("command", command), zap.Error(err))
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		// Cache and rate limit degrade to misses and fail open.
		logger.Warn("redis unavailable at startup", zap.Error(err))
	}

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, redisClient, cfg.Redis.TTL, logger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer pgStorage.Close()

	if err := migrations.Up(ctx, pgStorage.DB(), logger); err != nil {
		return err
	}

	apiClient := api.NewClient(cfg.Images.PublicBaseURL, cfg.Images.FetchTimeout, cfg.Images.MaxBytes, logger)
	loader := coords.NewDimensionLoader(apiClient, coords.LoaderConfig{
		Timeout:  cfg.Images.FetchTimeout,
		CacheTTL: cfg.Images.CacheTTL,
		Fallback: coords.CanvasSize{Width: cfg.Images.FallbackWidth, Height: cfg.Images.FallbackHeight},
	}, logger)

	h := handlers.New(handlers.Deps{
		Engine: pricing.NewEngine(pgStorage, logger),
		Scorer: design.NewScorer(designRules(cfg.Design), logger),
		Areas:  pgStorage,
		Images: loader,
		Checks: map[string]handlers.HealthCheck{
			"postgres": pgStorage.Ping,
			"redis":    redisClient.Ping,
		},
		Logger: logger,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := storageredis.NewLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handlers.NewRouter(h, limiter, logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("server shutdown gracefully")
	return nil
}

func migrate(ctx context.Context, cfg *config.Config, args []string, logger *zap.Logger) error {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, nil, 0, logger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer pgStorage.Close()

	switch direction {
	case "up":
		if err := migrations.Up(ctx, pgStorage.DB(), logger); err != nil {
			return err
		}
		return migrations.Status(ctx, pgStorage.DB(), logger)
	case "down":
		return migrations.Down(ctx, pgStorage.DB(), logger)
	case "status":
		return migrations.Status(ctx, pgStorage.DB(), logger)
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
}

func migrateAreas(ctx context.Context, cfg *config.Config, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("migrate-areas", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "report conversions without writing them")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, nil, 0, logger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer pgStorage.Close()

	fallback := coords.CanvasSize{Width: cfg.Images.FallbackWidth, Height: cfg.Images.FallbackHeight}
	report, err := pgStorage.MigrateLegacyPrintAreas(ctx, fallback, *dryRun)
	if err != nil {
		return err
	}

	logger.Info("print area migration finished",
		zap.Bool("dry_run", *dryRun),
		zap.Int("scanned", report.Scanned),
		zap.Int("migrated", report.Migrated),
		zap.Int("adjusted", report.Adjusted),
	)
	return nil
}

func invalidateCache(ctx context.Context, cfg *config.Config, productIDs []string, logger *zap.Logger) error {
	if len(productIDs) == 0 {
		return errors.New("invalidate-cache needs at least one product id")
	}

	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()

	// Only the cache is touched, so no database connection is opened.
	cache := storage.New(nil, redisClient, cfg.Redis.TTL, logger)
	for _, id := range productIDs {
		if err := cache.InvalidateProduct(ctx, id); err != nil {
			return fmt.Errorf("invalidate %s: %w", id, err)
		}
		logger.Info("product cache invalidated", zap.String("product_id", id))
	}
	return nil
}

func designRules(c config.DesignConfig) design.Rules {
	return design.Rules{
		BaseComplexity:            c.BaseComplexity,
		TextElementPrice:          c.TextElementPrice,
		ImageElementPrice:         c.ImageElementPrice,
		ShapeElementPrice:         c.ShapeElementPrice,
		ColorComplexityMultiplier: c.ColorComplexityMultiplier,
		SizeMultiplier:            c.SizeMultiplier,
		SpecialEffectsPrice:       c.SpecialEffectsPrice,
	}
}
