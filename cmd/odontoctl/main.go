// Command odontoctl — консольный клиент слоя данных odontoforense.
// Работает напрямую с локальным хранилищем (OF_BACKEND=local)
// или через REST API (OF_BACKEND=remote); результат печатается в JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bigkaa/odontoforense/internal/apiclient"
	"github.com/bigkaa/odontoforense/internal/config"
	"github.com/bigkaa/odontoforense/internal/kv"
	"github.com/bigkaa/odontoforense/internal/notify"
	"github.com/bigkaa/odontoforense/internal/repository"
	"github.com/bigkaa/odontoforense/internal/seed"
	"github.com/bigkaa/odontoforense/internal/service"
	"github.com/bigkaa/odontoforense/internal/session"
	"github.com/bigkaa/odontoforense/internal/store"
)

const usage = `Uso: odontoctl [-backend local|remote] <comando> [opções]

Comandos:
  casos         [-usuario ID]                        lista casos
  vitimas       [-caso ID]                           lista vítimas
  criar-caso    -titulo T [-descricao D] [-usuario ID]
  status-caso   -id ID -status S
  remover-caso  -id ID
  dashboard                                          resumo de casos e atividade
  login         -email E -senha S                    (remote)
  logout                                             (remote)
  reset                                              apaga todas as coleções (local)
`

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

// cli разбирает аргументы, выполняет команду и возвращает код выхода:
// 0 — успех, 1 — ошибка выполнения, 2 — ошибка аргументов.
func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Erro de configuração: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("odontoctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "local ou remote")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	if cfg.Backend != config.BackendLocal && cfg.Backend != config.BackendRemote {
		fmt.Fprintf(stderr, "Backend desconhecido: %q\n", cfg.Backend)
		return 2
	}

	// Логи в stderr, чтобы не смешивать их с JSON-выводом
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	a, err := newApp(ctx, cfg, stdout, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Erro: %v\n", err)
		return 1
	}
	defer a.close()

	if err := a.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
			return 2
		}
		msg := repository.UserMessage(err)
		if errors.Is(err, errBackend) {
			msg = err.Error()
		}
		fmt.Fprintf(stderr, "Erro: %s\n", msg)
		logger.Debug("Команда завершилась ошибкой", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// app — собранный слой данных выбранного backend.
type app struct {
	cfg        *config.Config
	set        *repository.Set
	summarizer service.Summarizer
	stdout     io.Writer
	logger     *slog.Logger

	// local
	handle  *kv.Handle
	adapter *store.Adapter
	keys    store.Keys

	// remote
	client *apiclient.Client
}

func newApp(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, stdout: stdout, logger: logger}
	sink := notify.NewLogNotifier(logger)

	switch cfg.Backend {
	case config.BackendRemote:
		sess := session.New()
		if err := sess.Load(cfg.SessionFile); err != nil {
			return nil, err
		}
		sess.OnEnd(func(reason session.EndReason) {
			logger.Warn("Сессия завершена сервером", slog.String("reason", string(reason)))
		})
		a.client = apiclient.New(cfg.APIURL, cfg.APITimeout, sess, logger)
		a.set = repository.NewRemoteSet(a.client, sink)
		a.summarizer = a.client

	default:
		handle, err := kv.Open(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("abrir armazenamento %s: %w", cfg.StoreDriver, err)
		}
		defaults := seed.Empty()
		if cfg.SeedDemo {
			defaults = seed.Demo()
		}
		a.handle = handle
		a.adapter = store.New(handle.Backend, logger)
		a.keys = store.NewKeys(cfg.KeyPrefix)
		a.set = repository.NewLocalSet(a.adapter, repository.LocalConfig{
			Keys:              a.keys,
			Defaults:          defaults,
			Latency:           cfg.SimulatedLatency,
			EnforceReferences: cfg.EnforceReferences,
			Notifier:          sink,
		}, logger)
		a.summarizer = service.NewDashboardService(a.set)
	}
	return a, nil
}

// close сохраняет сессию remote и освобождает хранилище local.
func (a *app) close() {
	if a.client != nil {
		if err := a.client.Session().Save(a.cfg.SessionFile); err != nil {
			a.logger.Warn("Не удалось сохранить сессию", slog.String("error", err.Error()))
		}
	}
	if a.handle != nil {
		a.handle.Close()
	}
}
