// Command seed loads a YAML story file into the SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"fallen-dragon-server/internal/bootstrap"
	"fallen-dragon-server/internal/config"
	"fallen-dragon-server/internal/seed"
	sharedDatabase "fallen-dragon-server/shared/database"
	"fallen-dragon-server/shared/interfaces"
	sharedLogger "fallen-dragon-server/shared/logger"
)

func main() {
	file := flag.String("file", "", "path to the story YAML file (defaults to SEED_FILE)")
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	cfg, err := config.LoadSeedConfig(*envFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *file == "" {
		*file = cfg.SeedFile
	}
	if *file == "" {
		fmt.Println("Usage: seed -file story.yaml")
		os.Exit(2)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{Level: cfg.LogLevel, Encoding: "console", Development: true})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, *file, logger); err != nil {
		logger.Error("Seeding failed", zap.String("file", *file), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, file string, logger *zap.Logger) error {
	db, err := bootstrap.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	stories := sharedDatabase.NewSQLiteStoryRepository(logger)

	var cache interfaces.StoryCache
	redisClient, err := bootstrap.ConnectRedis(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Redis unavailable, cached acts will expire on their own", zap.Error(err))
	} else if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		cache = sharedDatabase.NewRedisStoryCache(stories, redisClient, cfg.StoryCacheTTL, logger)
	}

	loader := seed.NewLoader(
		stories,
		sharedDatabase.NewSQLiteChoiceHistoryRepository(logger),
		sharedDatabase.NewTxManager(db.DB, logger),
		cache,
		logger,
	)
	story, result, err := loader.LoadFile(ctx, file)
	if err != nil {
		return err
	}
	fmt.Printf("Story %q (id %d): %s\n", story.Title, story.ID, result)
	return nil
}
