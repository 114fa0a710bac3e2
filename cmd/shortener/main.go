package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/Totarae/shortr/internal/config"
	"github.com/Totarae/shortr/internal/database"
	grpcv1 "github.com/Totarae/shortr/internal/grpc/v1"
	"github.com/Totarae/shortr/internal/handlers"
	"github.com/Totarae/shortr/internal/router"
	"github.com/Totarae/shortr/internal/service"
	"github.com/Totarae/shortr/internal/storage"
	"github.com/Totarae/shortr/internal/storage/file"
	"github.com/Totarae/shortr/internal/storage/memory"
	"github.com/Totarae/shortr/internal/storage/postgres"
	"github.com/Totarae/shortr/internal/storage/sqlite"
)

func main() {
	// Инициализация конфигурации
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// openTable открывает таблицу shortlink для выбранного режима хранения.
func openTable(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Table, error) {
	switch cfg.Mode {
	case config.ModeDatabase:
		if err := database.Migrate(cfg.DatabaseDSN, logger); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		return postgres.New(db), nil
	case config.ModeSQLite:
		t, err := sqlite.New(ctx, cfg.SQLiteDSN, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.ModeFile:
		t, err := file.New(cfg.FileStoragePath, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return memory.New(memory.DefaultShards), nil
	}
}

// run поднимает HTTP и, если задан адрес, gRPC-сервер и ждёт отмены ctx.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	table, err := openTable(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage (%s): %w", cfg.Mode, err)
	}
	defer func() {
		if err := table.Close(); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
	}()

	svc := service.NewAliasService(table, logger)
	r := router.NewRouter(handlers.NewHandler(svc, logger), logger, cfg.BodyLimit)

	httpLis, err := net.Listen("tcp", cfg.ServerAddress)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	httpSrv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var (
		grpcSrv *grpc.Server
		grpcLis net.Listener
	)
	if cfg.GRPCAddress != "" {
		grpcLis, err = net.Listen("tcp", cfg.GRPCAddress)
		if err != nil {
			httpLis.Close()
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcSrv = grpcv1.NewServer(svc, logger)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server started",
			zap.String("address", httpLis.Addr().String()),
			zap.String("mode", cfg.Mode))
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcSrv != nil {
		g.Go(func() error {
			logger.Info("gRPC server started", zap.String("address", grpcLis.Addr().String()))
			if err := grpcSrv.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if grpcSrv != nil {
			stopGRPC(shutdownCtx, grpcSrv)
		}
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// stopGRPC дожидается завершения активных вызовов, но не дольше ctx.
func stopGRPC(ctx context.Context, srv *grpc.Server) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		srv.Stop()
	}
}
