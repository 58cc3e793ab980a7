package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetrent/internal/caching"
	"fleetrent/internal/config"
	"fleetrent/internal/handlers"
	"fleetrent/internal/logging"
	"fleetrent/internal/middleware"
	"fleetrent/internal/repositories"
	"fleetrent/internal/services"
	"fleetrent/pkg/database"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
)

const version = "1.0.0"

const shutdownTimeout = 15 * time.Second

func main() {
	configDir := os.Getenv("FLEETRENT_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger hclog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database.URL, logger.Named("database"))
	if err != nil {
		return err
	}
	defer pool.Close()
	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, logger.Named("database")); err != nil {
			return err
		}
	}

	cache := newCache(ctx, cfg, logger)
	if cache != nil {
		defer cache.Close()
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize blob store: %w", err)
	}
	logger.Info("blob store ready", "driver", cfg.Storage.Driver, "bucket", cfg.Storage.Bucket)

	auth, err := newAuthenticator(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize authenticator: %w", err)
	}
	defer auth.Close()

	stores := repositories.NewStores(pool)
	tx := repositories.NewTransactor(pool)

	statsService := services.NewStatsService(repositories.NewStatsRepository(pool), cache, cfg.Stats.CacheTTL, logger)
	vehicleService := services.NewVehicleService(tx, stores.Vehicles, blobs, statsService, logger)
	clientService := services.NewClientService(tx, stores.Clients, statsService, logger)
	bookingService := services.NewBookingService(tx, stores.Bookings, stores.Extensions, statsService, logger)
	availability := services.NewAvailabilityChecker(stores.Vehicles, stores.Bookings)
	settingsService := services.NewSettingsService(repositories.NewSettingsRepository(pool), blobs, logger)
	contractService := services.NewContractService(stores, settingsService, blobs, services.NewPDFRenderer(), logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	handlers.NewHealthHandlers(pool, cache, version, logger).Register(e)

	versionMiddleware := middleware.NewVersionMiddleware()
	e.GET("/versions", versionMiddleware.Versions)
	v1 := versionMiddleware.VersionRoute(e, "v1", auth.Middleware())
	handlers.NewVehicleHandlers(vehicleService, availability, logger).Register(v1)
	handlers.NewClientHandlers(clientService, logger).Register(v1)
	handlers.NewBookingHandlers(bookingService, contractService, logger).Register(v1)
	handlers.NewSettingsHandlers(settingsService, statsService, logger).Register(v1)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("fleetrent server starting", "version", version, "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newCache connects to redis. Dashboard stats are computed uncached when redis is not configured or unreachable.
func newCache(ctx context.Context, cfg *config.Config, logger hclog.Logger) caching.CacheService {
	if cfg.Redis.Addr == "" {
		logger.Info("redis not configured, stats cache disabled")
		return nil
	}
	client, err := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("invalid redis configuration, stats cache disabled", "error", err)
		return nil
	}
	cache := caching.NewRedisCacheService(client)
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, stats cache disabled", "addr", cfg.Redis.Addr, "error", err)
		_ = cache.Close()
		return nil
	}
	return cache
}

func newBlobStore(ctx context.Context, cfg *config.Config) (services.BlobStore, error) {
	s := cfg.Storage
	if s.Driver == "s3" {
		return services.NewS3BlobStore(ctx, s.S3Region, s.S3AccessKeyID, s.S3SecretAccessKey, s.Bucket, s.PublicURL)
	}

	blobs, err := services.NewMinioBlobStore(s.MinioEndpoint, s.MinioAccessKey, s.MinioSecretKey, s.MinioUseSSL, s.Bucket, s.PublicURL)
	if err != nil {
		return nil, err
	}
	if b, ok := blobs.(interface{ EnsureBucket(context.Context) error }); ok {
		if err := b.EnsureBucket(ctx); err != nil {
			return nil, err
		}
	}
	return blobs, nil
}

func newAuthenticator(cfg *config.Config, logger hclog.Logger) (*middleware.Authenticator, error) {
	a := cfg.Auth
	if a.JWKSURL != "" {
		return middleware.NewJWKSAuthenticator(a.JWKSURL, a.Issuer, a.Audience, logger.Named("auth"))
	}
	secret := a.Secret
	if secret == "" {
		secret = random.String(32)
		logger.Warn("JWT_SECRET not set, using a generated development secret; tokens will not survive a restart")
	}
	return middleware.NewHMACAuthenticator(secret, a.Issuer, a.Audience), nil
}
