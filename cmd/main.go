package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"currencyrate-service/internal/app/currencyrate/config"
	"currencyrate-service/internal/app/currencyrate/handler"
	"currencyrate-service/internal/app/currencyrate/infrastructure/messaging"
	"currencyrate-service/internal/app/currencyrate/processor"
	"currencyrate-service/internal/app/currencyrate/provider"
	"currencyrate-service/internal/app/currencyrate/repository"
	"currencyrate-service/internal/app/currencyrate/service"
	"currencyrate-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("currencyrate-service", cfg.Log.Level)
	logger.Info().Msg("Starting Currency Rate Service")

	ctx := context.Background()

	// Подключаемся к PostgreSQL
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().Msg("Successfully connected to PostgreSQL")

	// Подключаемся к Redis
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Msg("Successfully connected to Redis")

	// Инициализируем репозитории
	currencyRepo := repository.NewCurrencyRepository(db)
	productRepo := repository.NewProductRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	rateRepo := repository.NewCurrencyRateRepository(db, currencyRepo)
	cacheRepo := repository.NewRateCacheRepository(redisClient, cfg.Redis.CacheTTL)
	logger.Info().Msg("Repositories initialized")

	// Инициализируем провайдеров курсов и фабрику
	registry := provider.NewRegistry(
		provider.NewNBPProvider(cfg.Providers.NBPBaseURL, cfg.Providers.TimeoutSec),
		provider.NewFrankfurterProvider(cfg.Providers.FrankfurterBaseURL, cfg.Providers.TimeoutSec),
	)
	factory := provider.NewFactory(registry, settingRepo)

	// Инициализируем Kafka producer (опционально)
	var publisher service.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		publisher = kafkaProducer
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Kafka producer initialized")
	}

	// Инициализируем сервисы
	calculator := service.NewPriceCalculatorService(
		rateRepo,
		currencyRepo,
		cacheRepo,
		settingRepo,
		service.NewDefaultPriceFormatter(),
	)
	syncService := service.NewSyncService(factory, rateRepo, calculator)
	refreshService := service.NewRefreshService(syncService, currencyRepo, settingRepo, publisher)
	displayService := service.NewDisplayService(calculator, productRepo, currencyRepo, settingRepo)
	logger.Info().Msg("Services initialized")

	// Запускаем cron для периодического обновления курсов
	cronScheduler := processor.NewCronScheduler(refreshService, cfg.Sync.Days)
	if err := cronScheduler.Start(ctx, cfg.Sync.CronSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	// Настраиваем маршруты
	rateHandler := handler.NewRateHandler(refreshService, displayService, rateRepo, settingRepo, registry)
	router := handler.SetupRoutes(rateHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем HTTP сервер в отдельной горутине
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown по SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Currency Rate Service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("Currency Rate Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя GORM
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	// Retry logic для устойчивости при запуске в Docker
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectRedis устанавливает соединение с Redis
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	for i := 0; i < 10; i++ {
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		logger.Warn().Int("attempt", i+1).Msg("Failed to connect to Redis, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to Redis after 10 attempts")
}
