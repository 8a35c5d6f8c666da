package kv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/odontoforense/internal/config"
	"github.com/bigkaa/odontoforense/internal/database"
	"github.com/bigkaa/odontoforense/internal/kv/filekv"
	"github.com/bigkaa/odontoforense/internal/kv/pgkv"
	"github.com/bigkaa/odontoforense/internal/kv/s3kv"
	"github.com/bigkaa/odontoforense/internal/kv/sqlitekv"
)

// Handle — открытый backend и ресурсы, которые нужно освободить.
type Handle struct {
	Backend Backend
	// Driver — имя выбранного драйвера
	Driver string
	// Pool — пул PostgreSQL; nil для остальных драйверов
	Pool    *pgxpool.Pool
	closers []func()
}

// Close освобождает ресурсы в обратном порядке открытия.
func (h *Handle) Close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		h.closers[i]()
	}
	h.closers = nil
}

// Open открывает backend по cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	h := &Handle{Driver: cfg.StoreDriver}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		h.Backend = NewMemory()

	case config.DriverFile:
		s, err := filekv.New(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		h.Backend = s

	case config.DriverSQLite:
		s, err := sqlitekv.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		h.Backend = s
		h.closers = append(h.closers, func() { _ = s.Close() })

	case config.DriverPostgres:
		pool, err := database.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		h.Pool = pool
		h.Backend = pgkv.New(pool)
		h.closers = append(h.closers, pool.Close)

	case config.DriverS3:
		s, err := s3kv.New(ctx, s3kv.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		h.Backend = s

	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища %q", cfg.StoreDriver)
	}

	logger.Info("Хранилище открыто", slog.String("driver", cfg.StoreDriver))
	return h, nil
}
