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

	"github.com/mkuznec/food-order-service/internal/config"
	"github.com/mkuznec/food-order-service/internal/lib/logger"
	"github.com/mkuznec/food-order-service/internal/pricing"
	"github.com/mkuznec/food-order-service/internal/repository/cache"
	"github.com/mkuznec/food-order-service/internal/repository/postgres"
	"github.com/mkuznec/food-order-service/internal/service"
	httptransport "github.com/mkuznec/food-order-service/internal/transport/http"
	"github.com/mkuznec/food-order-service/internal/transport/kafka"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad("config/config.yaml")

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting food-order-service", slog.String("log_level", cfg.Logger.Level))

	// 3. Инициализация репозитория (БД)
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer initCancel()

	dbpool, err := postgres.New(initCtx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbpool.Close()
	log.Info("successfully connected to postgres")

	repo := postgres.NewRepository(dbpool)

	// 4. Инициализация кэша
	// при недоступном Redis продолжаем на in-memory кэше:
	// кэш — оптимизация, сервис обязан работать и без него
	codec := cache.DefaultCodec()
	var entityCache service.Cache
	redisClient, err := cache.NewRedisClient(initCtx, cfg.Redis.Addr)
	if err != nil {
		log.Warn("redis unavailable, using in-memory cache", slog.String("error", err.Error()))
		entityCache = cache.NewMemory(codec)
	} else {
		defer redisClient.Close()
		entityCache = cache.NewRedis(redisClient, codec)
		log.Info("connected to redis", slog.String("addr", cfg.Redis.Addr))
	}

	// 5. Инициализация сервисного слоя
	lookup := service.NewLookup(repo, entityCache, service.LookupConfig{
		CacheOpTimeout: cfg.Cache.OpTimeout,
		CustomerTTL:    cfg.Cache.CustomerTTL,
		RestaurantTTL:  cfg.Cache.RestaurantTTL,
		ProductTTL:     cfg.Cache.ProductTTL,
	}, log)
	metrics := service.NewLogMetrics(log)
	orderSvc := service.NewOrderService(repo, lookup, pricing.New(), metrics, log)
	catalogSvc := service.NewCatalogService(repo, lookup, log)

	// 6. Инициализация и запуск Kafka-консьюмера
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, orderSvc, log)
	ctx, cancel := context.WithCancel(context.Background())
	go consumer.Run(ctx)

	// 7. Инициализация и запуск HTTP-сервера
	handler := httptransport.NewHandler(orderSvc, catalogSvc, log)
	httpServer := httptransport.NewServer(cfg.HTTPServer.Port, handler, cfg.HTTPServer.Timeout)
	log.Info("starting http server", slog.String("port", cfg.HTTPServer.Port))

	go func() {
		if err := httpServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down application")
	cancel() // сигнал для консьюмера на завершение

	// создаем контекст с таймаутом для шатдауна сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	if err := consumer.Close(); err != nil {
		log.Error("error closing kafka consumer", slog.String("error", err.Error()))
	}

	log.Info("application stopped")
}
