package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/maisonnoor/boutique-backend/api/routes"
	authsvc "github.com/maisonnoor/boutique-backend/internal/auth"
	cartsvc "github.com/maisonnoor/boutique-backend/internal/cart"
	catalogsvc "github.com/maisonnoor/boutique-backend/internal/catalog"
	contentsvc "github.com/maisonnoor/boutique-backend/internal/content"
	currencysvc "github.com/maisonnoor/boutique-backend/internal/currency"
	"github.com/maisonnoor/boutique-backend/internal/notifications"
	wishlistsvc "github.com/maisonnoor/boutique-backend/internal/wishlist"
	"github.com/maisonnoor/boutique-backend/pkg/auth/session"
	"github.com/maisonnoor/boutique-backend/pkg/config"
	"github.com/maisonnoor/boutique-backend/pkg/db"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/metrics"
	"github.com/maisonnoor/boutique-backend/pkg/migrate"
	"github.com/maisonnoor/boutique-backend/pkg/redis"
	"github.com/maisonnoor/boutique-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	// Object storage is optional. Without it the admin console loses image
	// uploads; everything else keeps working.
	var gcsClient *gcs.Client
	if cfg.GCS.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Warn(context.Background(), "gcs unavailable, image uploads disabled")
			gcsClient = nil
		}
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	refreshMetrics := metrics.NewRefreshMetrics(registry)

	sessionManager, err := session.NewManager(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	notifier, err := notifications.NewLogNotifier(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}
	confirmer := notifications.StaticConfirmer(true)

	authRepo := authsvc.NewRepository(dbClient.DB())
	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Repo:     authRepo,
		Sessions: sessionManager,
		JWT:      cfg.JWT,
		Session:  cfg.Session,
		Password: cfg.Password,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	directory, err := authsvc.NewDirectory(authRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin directory", err)
		os.Exit(1)
	}

	catalogParams := catalogsvc.ServiceParams{
		Repo:    catalogsvc.NewRepository(dbClient.DB()),
		Mirror:  redisClient,
		Keyer:   redisClient,
		Catalog: cfg.Catalog,
		GCS:     cfg.GCS,
		Logger:  logg,
		Metrics: refreshMetrics,
	}
	if gcsClient != nil {
		catalogParams.Signer = gcsClient
	}
	catalogService, err := catalogsvc.NewService(catalogParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Mirror:    redisClient,
		Keyer:     redisClient,
		Confirmer: confirmer,
		Commerce:  cfg.Commerce,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlistsvc.NewService(wishlistsvc.ServiceParams{
		Repo:              wishlistsvc.NewRepository(dbClient.DB()),
		Mirror:            redisClient,
		Keyer:             redisClient,
		Notifier:          notifier,
		Confirmer:         confirmer,
		LowStockThreshold: cfg.Catalog.LowStockThreshold,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	var rateSource currencysvc.RateSource = currencysvc.NewStaticRateSource()
	if cfg.Currency.RatesURL != "" {
		rateSource, err = currencysvc.NewHTTPRateSource(cfg.Currency.RatesURL, cfg.Currency.FetchTimeout)
		if err != nil {
			logg.Error(context.Background(), "failed to create rate source", err)
			os.Exit(1)
		}
	}
	currencyService, err := currencysvc.NewService(currencysvc.ServiceParams{
		Source:          rateSource,
		Mirror:          redisClient,
		Keyer:           redisClient,
		StalenessWindow: cfg.Currency.StalenessWindow,
		Logger:          logg,
		Metrics:         refreshMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create currency service", err)
		os.Exit(1)
	}

	contentService, err := contentsvc.NewService(contentsvc.ServiceParams{
		Repo:    contentsvc.NewRepository(dbClient.DB()),
		Mirror:  redisClient,
		Keyer:   redisClient,
		Logger:  logg,
		Metrics: refreshMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create content service", err)
		os.Exit(1)
	}

	var gcsPinger gcs.Pinger
	if gcsClient != nil {
		gcsPinger = gcsClient
	}

	handler := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		GCS:            gcsPinger,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Auth:           authService,
		Directory:      directory,
		Catalog:        catalogService,
		Cart:           cartService,
		Wishlist:       wishlistService,
		Currency:       currencyService,
		Content:        contentService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	err = multierr.Append(err, redisClient.Close())
	err = multierr.Append(err, dbClient.Close())
	if err != nil {
		logg.Error(ctx, "api server stopped with errors", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
