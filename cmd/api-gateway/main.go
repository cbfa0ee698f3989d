package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jcmexdev/mealprep-builder/internal/api-gateway/infra/httpx"
	builderapp "github.com/jcmexdev/mealprep-builder/internal/builder/app"
	"github.com/jcmexdev/mealprep-builder/internal/catalog"
	"github.com/jcmexdev/mealprep-builder/internal/config"
	"github.com/jcmexdev/mealprep-builder/internal/coordinator/sagalog/sqlite"
	"github.com/jcmexdev/mealprep-builder/internal/delivery"
	"github.com/jcmexdev/mealprep-builder/internal/geocode"
	"github.com/jcmexdev/mealprep-builder/internal/order-service/adapters/memory"
	"github.com/jcmexdev/mealprep-builder/internal/order-service/adapters/postgres"
	orderapp "github.com/jcmexdev/mealprep-builder/internal/order-service/app"
	"github.com/jcmexdev/mealprep-builder/internal/order-service/domain"
	paymentservice "github.com/jcmexdev/mealprep-builder/internal/payment-service/app"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/cache"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/interceptors"
	"github.com/jcmexdev/mealprep-builder/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("api stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis not reachable at startup", "addr", cfg.RedisAddr, "error", err)
		}
	}

	var (
		lookup catalog.Lookup
		store  domain.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		orderStore := postgres.NewStore(pool)
		if err := orderStore.EnsureSchema(ctx); err != nil {
			return err
		}
		lookup = catalog.NewPostgres(pool)
		store = orderStore
		slog.Info("using postgres catalog and order store")
	} else {
		mem := catalog.NewMemory()
		catalog.SeedDemo(mem)
		lookup = mem
		store = memory.NewStore()
		slog.Warn("DATABASE_URL not set, using in-memory demo catalog and order store")
	}

	sagaRepo, err := sqlite.Open(cfg.SagaDBPath)
	if err != nil {
		return err
	}
	defer sagaRepo.Close()

	settings, err := deliverySettings(ctx, cfg, rdb)
	if err != nil {
		return err
	}

	var geoCache cache.Cache = cache.NewMemory(cfg.ServiceName)
	if rdb != nil {
		geoCache = cache.NewRedisCache(rdb, cfg.ServiceName)
	}
	geocoder := geocode.NewCached(geocode.NewMapbox(cfg.MapboxToken), geoCache)

	builder := builderapp.NewService(lookup, builderapp.WithStrictOptions(cfg.BuilderStrictOptions))
	orders := orderapp.NewService(store, builder, settings, paymentservice.NewFakeCharger(cfg.PaymentLimitMinor), sagaRepo)

	router := httpx.NewRouter(httpx.NewHandler(builder, orders, geocoder), httpx.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		PriceRateLimit: cfg.PriceRateLimit,
		PriceRateBurst: cfg.PriceRateBurst,
		TrustProxy:     cfg.TrustProxy,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.UnaryServerInterceptor()),
	)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("grpc health server running", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		slog.Info("http api running", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		slog.Error("server failed", "error", err)
	}

	healthSrv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	return nil
}

// deliverySettings picks the settings source and logs whether the radius gate
// is active.
func deliverySettings(ctx context.Context, cfg *config.Config, rdb *redis.Client) (delivery.SettingsSource, error) {
	var src delivery.SettingsSource
	switch cfg.DeliverySource {
	case config.SettingsFromRedis:
		if rdb == nil {
			return nil, errors.New("DELIVERY_SETTINGS_SOURCE=redis requires REDIS_ADDR")
		}
		src = delivery.NewRedisSource(rdb)
	default:
		static, err := delivery.NewStaticSource(cfg.DeliveryHomeAddress, cfg.DeliveryHomeLat, cfg.DeliveryHomeLng, cfg.DeliveryRadiusMiles)
		if err != nil {
			return nil, err
		}
		src = static
	}

	gate, err := delivery.LoadGate(ctx, src)
	if err != nil {
		slog.Warn("delivery settings not readable at startup", "source", cfg.DeliverySource, "error", err)
		return src, nil
	}
	if s, ok := gate.Settings(); ok {
		slog.Info("delivery radius gate enabled", "home", s.HomeAddress, "radius_miles", s.RadiusMiles)
	} else {
		slog.Info("delivery radius gate disabled, no settings configured")
	}
	return src, nil
}
