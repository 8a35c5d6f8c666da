// Точка входа odontoforense — REST API слоя данных судебной одонтологии.
// Загружает конфигурацию, открывает key-value хранилище выбранного драйвера,
// собирает репозитории, сервисы аутентификации и сводки,
// запускает topologymetrics (для PostgreSQL), HTTP-сервер с JWT middleware
// и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/odontoforense/internal/api/handlers"
	"github.com/bigkaa/odontoforense/internal/api/middleware"
	"github.com/bigkaa/odontoforense/internal/config"
	"github.com/bigkaa/odontoforense/internal/database"
	"github.com/bigkaa/odontoforense/internal/kv"
	"github.com/bigkaa/odontoforense/internal/notify"
	"github.com/bigkaa/odontoforense/internal/repository"
	"github.com/bigkaa/odontoforense/internal/seed"
	"github.com/bigkaa/odontoforense/internal/server"
	"github.com/bigkaa/odontoforense/internal/service"
	"github.com/bigkaa/odontoforense/internal/store"
)

func main() {
	// 1. Загрузка конфигурации (.env + переменные окружения)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		slog.Error("Некорректная конфигурация сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("odontoforense запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("store_driver", cfg.StoreDriver),
	)

	// 3. Хранилище
	ctx := context.Background()
	handle, err := kv.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка открытия хранилища",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	defer handle.Close()

	adapter := store.New(handle.Backend, logger)
	keys := store.NewKeys(cfg.KeyPrefix)

	defaults := seed.Empty()
	if cfg.SeedDemo {
		defaults = seed.Demo()
		logger.Info("Демонстрационные данные включены")
	}

	// 4. Уведомления: журнал в логах + буфер для GET /notificacoes
	recorder := notify.NewRecorder(cfg.NotificationsBuffer)
	sink := notify.Multi{recorder, notify.NewLogNotifier(logger)}

	// 5. Репозитории
	localOpts := []repository.LocalOption{repository.WithLatency(cfg.SimulatedLatency)}
	set := repository.NewLocalSet(adapter, repository.LocalConfig{
		Keys:              keys,
		Defaults:          defaults,
		Latency:           cfg.SimulatedLatency,
		EnforceReferences: cfg.EnforceReferences,
		Notifier:          sink,
	}, logger)
	creds := repository.NewCredentials(adapter, keys, defaults.Credentials, logger, localOpts...)

	// 6. Сервисы
	authSvc := service.NewAuthService(set.Users, creds, cfg.JWTSecret, cfg.JWTTTL, logger)
	dashboardSvc := service.NewDashboardService(set)

	// 7. Readiness checkers
	checkers := []handlers.ReadinessChecker{kv.NewReadinessChecker(handle.Backend, handle.Driver)}
	if handle.Pool != nil {
		checkers = append(checkers, database.NewReadinessChecker(handle.Pool))
	}
	healthHandler := handlers.NewHealthHandler(handle.Driver, checkers...)

	// 8. API handler
	apiHandler := handlers.NewAPIHandler(healthHandler, set, dashboardSvc, authSvc, recorder, logger)

	// 9. JWT middleware: внешний JWKS (и собственные HS256-токены, если задан секрет)
	// или только собственные HS256-токены
	var jwtAuth *middleware.JWTAuth
	if cfg.JWTJWKSURL != "" {
		jwtAuth, err = middleware.NewJWTAuthJWKS(cfg.JWTJWKSURL, cfg.JWTLeeway, authSvc, logger)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if authSvc.LocalEnabled() {
			jwtAuth = jwtAuth.WithLocalHMAC(cfg.JWTSecret)
		} else {
			logger.Warn("OF_JWT_SECRET не задан: локальные вход и регистрация отключены")
		}
		logger.Info("JWT middleware инициализирован (JWKS)",
			slog.String("jwks_url", cfg.JWTJWKSURL),
			slog.Bool("local_tokens", authSvc.LocalEnabled()),
		)
	} else {
		jwtAuth = middleware.NewJWTAuthHMAC(cfg.JWTSecret, cfg.JWTLeeway, authSvc, logger)
		logger.Info("JWT middleware инициализирован (HS256)")
	}

	// 10. topologymetrics — только для драйвера postgres
	var dephealthSvc *service.DephealthService
	if handle.Pool != nil {
		// Проверка идёт через существующий пул, что позволяет обнаружить его исчерпание
		pgDB := stdlib.OpenDBFromPool(handle.Pool)
		defer pgDB.Close()

		svc, dhErr := service.NewDephealthService(service.DephealthConfig{
			Group:    cfg.DephealthGroup,
			DB:       pgDB,
			URL:      cfg.DatabaseURL(),
			Interval: cfg.DephealthCheckInterval,
		}, logger)
		if dhErr != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", dhErr.Error()),
			)
		} else if startErr := svc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
		} else {
			dephealthSvc = svc
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 11. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler,
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
		server.JWTAuthWithExclusions(jwtAuth.Middleware(), server.PublicPaths...),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 12. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("odontoforense остановлен")
}
