// Package server initializes and runs the relay server: storage, migrations,
// the chat transport and bot consumer, and the HTTP endpoint, with graceful
// shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mihhailt/telebridge/internal/logging"
	"github.com/mihhailt/telebridge/internal/server/bot"
	"github.com/mihhailt/telebridge/internal/server/config"
	"github.com/mihhailt/telebridge/internal/server/httpapi"
	"github.com/mihhailt/telebridge/internal/server/metrics"
	"github.com/mihhailt/telebridge/internal/server/pairing"
	"github.com/mihhailt/telebridge/internal/server/repositories/repomanager"
	"github.com/mihhailt/telebridge/internal/server/services"
	"github.com/mihhailt/telebridge/internal/server/telegram"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	transport *telegram.BotTransport
	bot       *bot.Bot
	httpSrv   *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	transport, err := telegram.NewBotTransport(cfg.TelegramBotToken, logger)
	if err != nil {
		return nil, fmt.Errorf("transport init error: %w", err)
	}

	codeRegistry := pairing.NewRegistry(cfg.PairingCodeTTL)

	userService := services.NewUserService(db, rm, cfg)
	relayService := services.NewRelayService(db, rm, codeRegistry, transport, logger, m)
	attachmentService := services.NewAttachmentService(cfg)

	chatBot := bot.New(relayService, transport, logger)

	httpSrv := httpapi.NewServer(httpapi.Options{
		DB:          db,
		Users:       userService,
		Relay:       relayService,
		Attachments: attachmentService,
		JWTSecret:   []byte(cfg.SecretKey),
		Logger:      logger,
		Registry:    registry,
	})

	return &App{
		config:    cfg,
		logger:    logger,
		db:        db,
		transport: transport,
		bot:       chatBot,
		httpSrv:   httpSrv,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.bot.Run(ctx, app.transport.Updates(ctx))
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpSrv.Listen(app.config.EndpointAddrHTTP); err != nil {
			app.logger.Error(ctx, "http server stopped", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.httpSrv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "error shutting down http server", "error", err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "error closing db", "error", err.Error())
	}

	app.logger.Info(shutdownCtx, "stopped")
}
