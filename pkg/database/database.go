package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Database представляет подключение к базе данных SQLite
type Database struct {
	DB     *sql.DB
	logger *zap.Logger
}

// Config содержит настройки для подключения к базе данных
type Config struct {
	Path         string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// DSN builds the modernc.org/sqlite connection string. Every connection gets
// foreign keys, WAL and a busy timeout; transactions start with BEGIN IMMEDIATE
// so concurrent writers queue on the database lock instead of failing at commit.
func (c Config) DSN() string {
	busy := c.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	params.Add("_pragma", "synchronous(NORMAL)")
	params.Set("_txlock", "immediate")
	return filepath.Clean(c.Path) + "?" + params.Encode()
}

// New открывает базу данных SQLite и проверяет подключение
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Database, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	logger = logger.Named("Database")
	logger.Info("Connected to SQLite database", zap.String("path", cfg.Path))

	return &Database{DB: db, logger: logger}, nil
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	err := d.DB.Close()
	if err != nil {
		d.logger.Error("Failed to close database", zap.Error(err))
		return err
	}
	d.logger.Info("Database connection closed")
	return nil
}
