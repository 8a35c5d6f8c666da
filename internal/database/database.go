// Пакет database — PostgreSQL для драйвера хранилища postgres:
// пул pgx, встроенные миграции таблицы kv и проверка готовности.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/odontoforense/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Ожидание сервера при старте.
const connectAttempts = 5

var connectDelay = time.Second

// Pinger — проверка доступности БД (*pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Open подключается к PostgreSQL, дожидаясь его доступности,
// и приводит схему kv к последней версии. Повторный вызов безопасен.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger = logger.With(slog.String("component", "database"))

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := waitReachable(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	if err := migrateUp(cfg.MigrationURL(), logger); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("PostgreSQL подключён",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
		slog.Int("max_conns", int(pool.Config().MaxConns)),
	)
	return pool, nil
}

// waitReachable повторяет ping до connectAttempts раз с паузой connectDelay.
func waitReachable(ctx context.Context, db Pinger, logger *slog.Logger) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = db.Ping(ctx); err == nil {
			return nil
		}
		if attempt == connectAttempts {
			return fmt.Errorf("PostgreSQL недоступен после %d попыток: %w", attempt, err)
		}
		logger.Warn("PostgreSQL пока недоступен",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(connectDelay):
		}
	}
}

// migrateUp применяет встроенные миграции (драйвер pgx5).
func migrateUp(url string, logger *slog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("миграции: источник: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("миграции: %w", err)
	}
	defer m.Close()

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug("Схема kv актуальна")
	case err != nil:
		return fmt.Errorf("миграции: применение: %w", err)
	default:
		version, _, _ := m.Version()
		logger.Info("Схема kv обновлена", slog.Uint64("version", uint64(version)))
	}
	return nil
}

// ReadinessChecker — строка "postgresql" в ответе /health/ready.
type ReadinessChecker struct {
	db      Pinger
	timeout time.Duration
}

// NewReadinessChecker создаёт проверку готовности PostgreSQL.
func NewReadinessChecker(db Pinger) *ReadinessChecker {
	return &ReadinessChecker{db: db, timeout: 3 * time.Second}
}

func (c *ReadinessChecker) Name() string { return "postgresql" }

func (c *ReadinessChecker) CheckReady(ctx context.Context) (status, message string) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.db.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	}
	return "ok", "пул подключений активен"
}
