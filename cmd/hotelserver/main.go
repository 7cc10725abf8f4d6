// Package main runs the hotel booking HTTP server.
// It wires together configuration, the room store, the allocator and the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/booking"
	"github.com/cory-johannsen/hotel/internal/config"
	"github.com/cory-johannsen/hotel/internal/hotel"
	"github.com/cory-johannsen/hotel/internal/httpapi"
	"github.com/cory-johannsen/hotel/internal/observability"
	"github.com/cory-johannsen/hotel/internal/random"
	"github.com/cory-johannsen/hotel/internal/server"
	"github.com/cory-johannsen/hotel/internal/storage"
	"github.com/cory-johannsen/hotel/internal/storage/file"
	"github.com/cory-johannsen/hotel/internal/storage/memory"
	"github.com/cory-johannsen/hotel/internal/storage/postgres"
)

const (
	healthInterval = 30 * time.Second
	healthTimeout  = 5 * time.Second
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, zap.String("service", cfg.Tracing.ServiceName))
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	tp, err := observability.NewTracerProvider(cfg.Tracing)
	if err != nil {
		logger.Fatal("initializing tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("flushing traces", zap.Error(err))
		}
	}()

	logger.Info("starting hotel booking server",
		zap.String("store", cfg.Server.Store),
		zap.Int("total_rooms", cfg.Layout.TotalRooms),
		zap.Int("rooms_per_floor", cfg.Layout.RoomsPerFloor),
	)

	seed, err := hotel.NewLayout(cfg.Layout.TotalRooms, cfg.Layout.RoomsPerFloor)
	if err != nil {
		logger.Fatal("building layout", zap.Error(err))
	}

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	var store storage.Store
	switch cfg.Server.Store {
	case config.StoreMemory:
		store = memory.New(seed)
	case config.StoreFile:
		fs, err := file.New(ctx, cfg.File.Path, seed)
		if err != nil {
			logger.Fatal("opening room file", zap.String("path", cfg.File.Path), zap.Error(err))
		}
		store = fs
	case config.StorePostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = postgres.NewRoomRepository(pool.DB(), seed)

		lifecycle.Add("postgres-health", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				return pool.MonitorHealth(ctx, healthInterval, healthTimeout, logger)
			},
			StopFn: pool.Close,
		})
	}

	var src random.Source
	if cfg.Random.Seed != 0 {
		src = random.NewSeededSource(cfg.Random.Seed)
	} else {
		src = random.NewCryptoSource()
	}

	allocator := hotel.Allocator{MaxCombinations: cfg.Allocator.MaxCombinations}
	svc := booking.NewService(store, allocator, src, logger, tp.Tracer("github.com/cory-johannsen/hotel/internal/booking"))

	if _, err := svc.Stats(ctx); err != nil {
		logger.Fatal("loading room state", zap.Error(err))
	}

	httpServer := httpapi.NewServer(cfg.HTTP, httpapi.NewHandler(svc, logger), logger, tp.Provider())
	lifecycle.Add("http", &server.FuncService{
		StartFn: func(context.Context) error {
			return httpServer.ListenAndServe()
		},
		StopFn: httpServer.Stop,
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", fmt.Sprintf("http://%s", cfg.HTTP.Addr())),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
