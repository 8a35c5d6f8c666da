// dephealth.go — граф зависимостей topologymetrics для драйвера postgres.
// Хранилище коллекций — единственная критичная зависимость сервиса;
// её состояние попадает на /metrics как app_dependency_health
// и app_dependency_latency_seconds.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
)

// ServiceID — вершина odontoforense в графе зависимостей.
const ServiceID = "odontoforense"

// storeDependency — имя зависимости в метриках.
const storeDependency = "postgresql"

// DephealthConfig — параметры мониторинга хранилища.
type DephealthConfig struct {
	// Group — OF_DEPHEALTH_GROUP
	Group string
	// DB — пул хранилища через stdlib.OpenDBFromPool: проверка видит его исчерпание
	DB *sql.DB
	// URL — адрес PostgreSQL, только для лейблов
	URL      string
	Interval time.Duration
}

// DephealthService — периодическая проверка хранилища.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService регистрирует хранилище как критичную зависимость.
// opts дополняют настройки SDK (например, dephealth.WithRegisterer в тестах).
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger, opts ...dephealth.Option) (*DephealthService, error) {
	all := append([]dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.AddDependency(storeDependency, dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.DB)),
			dephealth.FromURL(cfg.URL),
			dephealth.CheckInterval(cfg.Interval),
			dephealth.Critical(true),
		),
	}, opts...)

	dh, err := dephealth.New(ServiceID, cfg.Group, all...)
	if err != nil {
		return nil, err
	}
	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth"), slog.String("group", cfg.Group)),
	}, nil
}

func (ds *DephealthService) Start(ctx context.Context) error {
	if err := ds.dh.Start(ctx); err != nil {
		return err
	}
	ds.logger.Info("Проверка хранилища запущена")
	return nil
}

// Stop останавливает проверки и пишет последнее известное состояние.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Проверка хранилища остановлена", slog.Bool("store_healthy", ds.StoreHealthy()))
}

// StoreHealthy — результат последних проверок хранилища.
// До первой проверки возвращает false.
func (ds *DephealthService) StoreHealthy() bool {
	health := ds.dh.Health()
	if len(health) == 0 {
		return false
	}
	for _, ok := range health {
		if !ok {
			return false
		}
	}
	return true
}
