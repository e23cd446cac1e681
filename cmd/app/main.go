package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mabenj/IoT-Platform/config"
	"github.com/mabenj/IoT-Platform/internal/application/usecase"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/cache"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/influx"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/metrics"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/repository"
	"github.com/mabenj/IoT-Platform/internal/logger"
	coapserver "github.com/mabenj/IoT-Platform/internal/transport/coap"
	grpc_server "github.com/mabenj/IoT-Platform/internal/transport/grpc"
	handlers "github.com/mabenj/IoT-Platform/internal/transport/http"
	"github.com/mabenj/IoT-Platform/internal/transport/ingest"
)

func main() {
	configPath := pflag.String("config", ".", "directory holding app.env and .env")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal().Err(err).Msg("Failed to init logger")
	}
	log := logger.GetLogger()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate DB")
	}

	m := metrics.New()

	var tokenCache usecase.TokenCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		tokenCache = cache.NewTokenCache(rdb, cfg.ResolverCacheTTL)
	}

	var mirror usecase.Mirror
	if cfg.InfluxURL != "" {
		im := influx.NewMirror(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
		if ok, err := im.Ping(context.Background()); err != nil || !ok {
			log.Warn().Err(err).Msg("InfluxDB not reachable, mirroring stays enabled")
		}
		defer im.Close()
		mirror = im
	}

	deviceRepo := repository.NewDeviceRepository(db)
	dataRepo := repository.NewDeviceDataRepository(db)

	resolver := usecase.NewAccessResolver(deviceRepo, tokenCache, m, logger.WithComponent("resolver"))
	ingestUC := usecase.NewIngestUseCase(resolver, dataRepo, mirror, m, logger.WithComponent("ingest"))
	dataUC := usecase.NewDeviceDataUseCase(deviceRepo, dataRepo, usecase.DeviceDataOptions{
		ItemsPerPage:    cfg.ItemsPerPage,
		AllowDeletion:   cfg.AllowDataDeletion,
		CascadeOnRemove: cfg.CascadeDeviceData,
	}, logger.WithComponent("device_data"))
	deviceUC := usecase.NewDeviceUseCase(deviceRepo, resolver, dataUC.OnDeviceRemoved, logger.WithComponent("devices"))

	health := grpc_server.NewHealthServer()

	webLog := logger.WithComponent("web")
	webServer := &http.Server{
		Addr: cfg.WebPort,
		Handler: handlers.NewRouter(
			handlers.NewDeviceDataHandler(dataUC, webLog),
			handlers.NewDeviceHandler(deviceUC, webLog),
			handlers.RouterConfig{
				AllowedOrigins: cfg.Origins(),
				Delay:          cfg.Delay(cfg.WebDelayMs),
				Metrics:        m.Handler(),
				Log:            webLog,
			},
		),
	}

	httpLog := logger.WithComponent("http_ingest")
	ingestServer := &http.Server{
		Addr: cfg.HTTPPort,
		Handler: ingest.NewRouter(ingest.NewHandler(ingestUC, httpLog), ingest.Options{
			AllowedOrigins: cfg.Origins(),
			Delay:          cfg.Delay(cfg.HTTPDelayMs),
		}),
	}

	coapLog := logger.WithComponent("coap_ingest")
	coapServer := coapserver.NewServer(
		coapserver.NewHandler(ingestUC, coapLog),
		coapserver.Options{Delay: cfg.Delay(cfg.CoAPDelayMs)},
		coapLog,
	)
	if err := coapServer.Listen(cfg.CoAPPort); err != nil {
		log.Fatal().Err(err).Msg("Failed to listen for CoAP")
	}

	go serveHTTP(webServer, grpc_server.ServiceWeb, health)
	go serveHTTP(ingestServer, grpc_server.ServiceHTTPIngest, health)
	go func() {
		log.Info().Str("addr", cfg.CoAPPort).Msg("CoAP ingestion server is running")
		health.SetServing(grpc_server.ServiceCoAPIngest, true)
		if err := coapServer.Serve(); err != nil {
			log.Error().Err(err).Msg("CoAP server stopped")
		}
	}()

	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", cfg.GRPCPort)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to listen for gRPC")
		}
		go func() {
			log.Info().Str("addr", cfg.GRPCPort).Msg("gRPC health server is running")
			if err := health.Serve(lis); err != nil {
				log.Fatal().Err(err).Msg("gRPC server failed")
			}
		}()
	}

	if !cfg.IsProduction() {
		log.Info().Msg("Artificial request delays are enabled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info().Msg("Shutting down servers...")
	health.GracefulStop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{webServer, ingestServer} {
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("Server shutdown failed")
		}
	}
	coapServer.Stop()
}

func serveHTTP(srv *http.Server, service string, health *grpc_server.HealthServer) {
	log := logger.WithComponent(service)
	log.Info().Str("addr", srv.Addr).Msg("Server is running")
	health.SetServing(service, true)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
