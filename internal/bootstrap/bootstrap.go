// Package bootstrap opens the external resources shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fallen-dragon-server/internal/config"
	pkgDatabase "fallen-dragon-server/pkg/database"
	"fallen-dragon-server/pkg/migration"
	"fallen-dragon-server/shared/database/migrations"
)

// OpenDatabase opens the SQLite file and applies pending migrations.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pkgDatabase.Database, error) {
	db, err := pkgDatabase.New(ctx, pkgDatabase.Config{
		Path:         cfg.DBPath,
		BusyTimeout:  cfg.DBBusyTimeout,
		MaxOpenConns: cfg.DBMaxOpenConns,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := migration.NewMigrator(migration.Config{MigrationsFS: migrations.FS}, db.DB, logger)
	if err := migrator.Up(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	if version, dirty, err := migrator.Version(); err == nil {
		logger.Info("Database schema ready", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return db, nil
}

// ConnectRedis returns nil without error when REDIS_ADDR is not set.
func ConnectRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, story cache disabled")
		return nil, nil
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	logger.Info("Redis connection options configured", zap.String("address", opts.Addr), zap.Int("db", opts.DB))

	const maxRetries = 10
	retryDelay := 2 * time.Second
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		cancel()
		if err == nil {
			logger.Info("Successfully connected and pinged Redis", zap.Int("attempt", attempt))
			return client, nil
		}

		_ = client.Close()
		lastErr = err
		logger.Warn("Redis ping failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))
		if err := sleep(ctx, retryDelay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries, lastErr)
}

// ConnectRabbitMQ returns nil without error when RABBITMQ_URL is not set.
func ConnectRabbitMQ(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*amqp.Connection, error) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, session events disabled")
		return nil, nil
	}

	const maxRetries = 10
	retryDelay := 3 * time.Second
	logger.Info("Attempting to connect to RabbitMQ",
		zap.String("url", maskURL(cfg.RabbitMQURL)),
		zap.Int("max_retries", maxRetries))

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ", zap.Int("attempt", attempt))
			go func() {
				notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))
				if err := <-notifyClose; err != nil {
					logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(err))
				}
			}()
			return conn, nil
		}

		lastErr = err
		logger.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))
		if err := sleep(ctx, retryDelay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, lastErr)
}

// maskURL hides the password of a broker URL for logging.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
