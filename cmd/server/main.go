package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/stockroom/internal/adapter/handler"
	"github.com/rl1809/stockroom/internal/adapter/handler/pb"
	"github.com/rl1809/stockroom/internal/adapter/storage"
	"github.com/rl1809/stockroom/internal/config"
	"github.com/rl1809/stockroom/internal/core/service"
	"github.com/rl1809/stockroom/internal/logging"
	"github.com/rl1809/stockroom/internal/metrics"
	"github.com/rl1809/stockroom/internal/port"
)

const serviceName = "stockroom"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger := logging.New(&logging.Config{
		Level:       logging.LogLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
		ServiceName: serviceName,
		Output:      os.Stdout,
	})
	logger.SetDefault()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(serviceName)

	// Initialize storage
	repo, flusher, err := openRepository(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.WithError(err).Error("Failed to close storage")
		}
	}()

	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("prepare storage: %w", err)
	}
	logger.Info("Storage ready", "driver", cfg.Storage.Driver)

	inventory := service.NewInventoryService(repo, logger, m)

	// Initialize HTTP server
	gin.SetMode(gin.ReleaseMode)
	httpHandler := handler.NewHTTPHandler(inventory, handler.FilePaths{
		File:    cfg.Server.FilePath,
		Project: cfg.Server.ProjectPath,
	}, logger)
	router := handler.NewRouter(httpHandler, handler.RouterConfig{
		Logger:       logger,
		Metrics:      m,
		RequestDelay: cfg.Server.RequestDelay,
		CORSOrigins:  cfg.Server.CORSOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpListener, err := net.Listen("tcp", cfg.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}

	// Initialize gRPC server
	var grpcServer *grpc.Server
	var grpcListener net.Listener
	if cfg.Server.GRPCAddr != "" {
		grpcListener, err = net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			httpListener.Close()
			return fmt.Errorf("listen grpc: %w", err)
		}

		grpcServer = grpc.NewServer()
		pb.RegisterInventoryServiceServer(grpcServer, handler.NewGRPCHandler(inventory, logger))

		healthServer := health.NewServer()
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthServer.SetServingStatus(pb.InventoryService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(grpcServer, healthServer)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", httpListener.Addr().String())
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcServer != nil {
		g.Go(func() error {
			logger.Info("gRPC server listening", "addr", grpcListener.Addr().String())
			if err := grpcServer.Serve(grpcListener); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	if flusher != nil {
		g.Go(func() error {
			return flusher.Run(gctx, cfg.Storage.FlushInterval, func(err error) {
				logger.WithError(err).Warn("Snapshot flush failed")
			})
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		logger.Info("HTTP server stopped")

		if grpcServer != nil {
			grpcServer.GracefulStop()
			logger.Info("gRPC server stopped")
		}
		return err
	})

	return g.Wait()
}

// openRepository builds the configured storage driver. For the memory driver
// it also returns the adapter so its snapshot flusher can be run.
func openRepository(ctx context.Context, cfg config.StorageConfig, logger *logging.Logger) (port.InventoryRepository, *storage.MemoryAdapter, error) {
	switch cfg.Driver {
	case "mysql":
		db, err := storage.OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to MySQL")
		return storage.NewMySQLAdapter(db), nil, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: 100,
		})
		logger.Info("Using Redis", "addr", cfg.RedisAddr, "key", cfg.RedisKey)
		return storage.NewRedisAdapter(rdb, cfg.RedisKey), nil, nil

	default:
		mem := storage.NewMemoryAdapter(cfg.SnapshotPath)
		return mem, mem, nil
	}
}
