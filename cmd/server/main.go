package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"invisible_lens/internal/app/config"
	"invisible_lens/internal/app/di"
	"invisible_lens/internal/app/router"
	scannerhandler "invisible_lens/internal/feature/scanner/transport/handler"
	viewhandler "invisible_lens/internal/feature/viewcontroller/transport/handler"
	"invisible_lens/internal/platform/http/handler"
	infraredis "invisible_lens/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis（任意。使えない場合はキャッシュなしで起動）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Analyzer
	analyzer, closeAnalyzer, err := di.NewEntityAnalyzer(ctx, cfg, rdb)
	if err != nil {
		slog.Error("failed to create entity analyzer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeAnalyzer(); err != nil {
			slog.Error("failed to close analyzer", "error", err)
		}
	}()

	// Usecase
	scannerUC := di.NewScannerUsecase(cfg, analyzer)
	viewUC := di.NewViewUsecase(cfg, scannerUC)

	// Handler
	var pinger handler.CachePinger
	if rdb != nil {
		pinger = rdb
	}
	healthH := handler.NewHealthHandler(pinger)
	viewH := viewhandler.NewViewHandler(viewUC)
	scannerH := scannerhandler.NewScannerHandler(scannerUC)

	// ルータ生成
	r := router.NewRouter(healthH, viewH, scannerH, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	// capture?wait=true は解析完了まで待つので、解析タイムアウト分は猶予を取る
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AnalyzerTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
