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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"inkwell/internal/auth"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/events"
	"inkwell/internal/notify"
	"inkwell/internal/repository"
	"inkwell/internal/router"
	"inkwell/internal/services"
	"inkwell/internal/telemetry"
)

const badgeTTL = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(os.Stdout, cfg.ServiceName, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Error("setup tracing", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}

	badge, closeBadge, err := openBadge(ctx, cfg, logger)
	if err != nil {
		logger.Error("badge cache", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	newID, err := services.NewSnowflakeIDs(cfg.SnowflakeNode)
	if err != nil {
		logger.Error("id generator", "error", err)
		os.Exit(1)
	}

	dispatcher := notify.NewDispatcher(cfg.NotifyQueueSize, logger)
	deps := services.Deps{
		Store:    store,
		Notifier: dispatcher,
		Events:   publisher,
		Badge:    badge,
		Logger:   logger,
		NewID:    newID,
	}
	signer := auth.NewSigner(cfg.SecretAccessKey, cfg.TokenTTL)

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(router.Deps{
		Comments:      services.NewCommentService(deps),
		Likes:         services.NewLikeService(deps),
		Notifications: services.NewNotificationService(deps),
		Posts:         services.NewPostService(deps),
		Accounts:      services.NewAccountService(deps, signer),
		Signer:        signer,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(engine, cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("inkwell server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("drain notification queue", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("close event publisher", "error", err)
	}
	closeBadge()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", "error", err)
	}
}

func openStore(cfg config.Config) (repository.Store, error) {
	if cfg.DatabaseDriver == "memory" {
		slog.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemory(), nil
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	return repository.NewGorm(gdb), nil
}

func openBadge(ctx context.Context, cfg config.Config, logger *slog.Logger) (cache.Badge, func(), error) {
	if cfg.RedisAddr == "" {
		b, err := cache.NewLocalBadge(10000, badgeTTL)
		return b, func() {}, err
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, badge lookups will fall through to the store", "addr", cfg.RedisAddr, "error", err)
	}
	return cache.NewRedisBadge(rdb, badgeTTL), func() { _ = rdb.Close() }, nil
}
