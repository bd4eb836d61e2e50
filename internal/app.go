package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/adapters/authclient"
	"github.com/Fvicente04/ca1-real-estate-app/internal/adapters/localauth"
	logger_adapter "github.com/Fvicente04/ca1-real-estate-app/internal/adapters/logger"
	"github.com/Fvicente04/ca1-real-estate-app/internal/adapters/memory"
	mongo_adapter "github.com/Fvicente04/ca1-real-estate-app/internal/adapters/mongo"
	postgres_adapter "github.com/Fvicente04/ca1-real-estate-app/internal/adapters/postgres"
	rabbitmq_adapter "github.com/Fvicente04/ca1-real-estate-app/internal/adapters/rabbitmq"
	"github.com/Fvicente04/ca1-real-estate-app/internal/adapters/rest"
	"github.com/Fvicente04/ca1-real-estate-app/internal/adapters/session"
	"github.com/Fvicente04/ca1-real-estate-app/internal/configs"
	"github.com/Fvicente04/ca1-real-estate-app/internal/constants"
	"github.com/Fvicente04/ca1-real-estate-app/internal/contracts"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/shell"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/view"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/visit"
	fluentlogger "github.com/Fvicente04/ca1-real-estate-app/pkg/fluent_logger"
	"github.com/Fvicente04/ca1-real-estate-app/pkg/postgres"
	"github.com/Fvicente04/ca1-real-estate-app/pkg/rabbitmq/rabbitmq_common"
	"github.com/Fvicente04/ca1-real-estate-app/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"go.mongodb.org/mongo-driver/mongo"
)

const shutdownTimeout = 10 * time.Second

// watcher - источник внешних изменений хранилища, работающий до отмены контекста.
type watcher interface {
	Watch(ctx context.Context) error
}

// App - структура приложения
type App struct {
	config       *configs.AppConfig
	apiServer    *rest.Server
	registry     *visit.Registry
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	watchers []watcher
	// closers вызываются в обратном порядке при остановке
	closers []func()
}

// NewApp - "Composition Root": все зависимости создаются и связываются здесь.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	a := &App{config: appConfig}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if appConfig.FluentBit.Enabled {
		a.fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(a.fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	a.logger = baseLogger.WithFields(port.Fields{"component": "app"})
	a.logger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 2. ХРАНИЛИЩЕ ---
	listings, viewings, err := a.initStore(baseLogger)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Store initialized", port.Fields{"driver": appConfig.Store.Driver})

	// --- 3. СОБЫТИЯ ---
	if appConfig.RabbitMQ.URL != "" {
		events, err := a.initEvents(baseLogger)
		if err != nil {
			return nil, err
		}
		notifyingListings := rabbitmq_adapter.NewNotifyingListingRepository(listings, events)
		notifyingViewings := rabbitmq_adapter.NewNotifyingViewingRepository(viewings, events)
		// дождаться начатых публикаций до закрытия продюсера
		a.closers = append(a.closers, notifyingListings.Wait, notifyingViewings.Wait)
		listings, viewings = notifyingListings, notifyingViewings
		a.logger.Info("RabbitMQ event publishing enabled", port.Fields{"exchange": appConfig.RabbitMQ.Exchange})
	} else {
		a.logger.Info("RABBITMQ_URL is not set, event publishing disabled", nil)
	}

	// --- 4. АУТЕНТИФИКАЦИЯ ---
	var (
		authBackend port.AuthBackendPort
		authHandler *rest.AuthHandler
	)
	if appConfig.Auth.BackendURL != "" {
		authBackend = authclient.NewClient(appConfig.Auth.BackendURL, nil)
		a.logger.Info("Using remote authentication service", port.Fields{"url": appConfig.Auth.BackendURL})
	} else {
		local, err := localauth.NewBackend(localauth.Config{
			SigningKey: appConfig.Auth.SigningKey,
			TokenTTL:   appConfig.Auth.TokenTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create local auth backend: %w", err)
		}
		authBackend = local
		authHandler = rest.NewAuthHandler(local)
		a.logger.Info("Using built-in authentication backend", nil)
	}

	// --- 5. ВИЗИТЫ И HTTP ---
	manifests, err := shell.LoadManifests()
	if err != nil {
		return nil, fmt.Errorf("failed to load view manifests: %w", err)
	}

	sessionCfg := session.Config{RevalidateInterval: appConfig.Auth.RevalidateInterval}
	a.registry = visit.NewRegistry(context.Background(), visit.Config{
		Listings: listings,
		Viewings: viewings,
		NewSession: func() visit.Session {
			return session.NewProvider(authBackend, sessionCfg, baseLogger)
		},
		Scheduler: view.RealScheduler{},
		Manifests: manifests,
		Logger:    baseLogger,
		IdleTTL:   appConfig.Visits.IdleTTL,
	})

	a.apiServer = rest.NewServer(rest.ServerConfig{
		Port:           appConfig.Rest.PORT,
		AllowedOrigins: appConfig.Rest.AllowedOrigins,
	}, rest.NewVisitHandler(a.registry), authHandler, baseLogger)
	a.logger.Info("REST API server configured.", nil)

	ok = true
	return a, nil
}

func (a *App) initStore(baseLogger port.LoggerPort) (port.ListingRepositoryPort, port.ViewingRepositoryPort, error) {
	cfg := a.config
	ctx := context.Background()

	switch cfg.Store.Driver {
	case configs.StorePostgres:
		dbPool, err := postgres.NewClient(ctx, postgres.Config{
			DatabaseURL: cfg.Database.URL,
			MaxConns:    int32(cfg.Database.MaxConns),
		})
		if err != nil {
			a.logger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.closers = append(a.closers, dbPool.Close)

		if err := postgres_adapter.EnsureSchema(ctx, dbPool); err != nil {
			return nil, nil, err
		}
		listings, err := postgres_adapter.NewListingRepository(dbPool, baseLogger)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, listings.Close)
		a.watchers = append(a.watchers, listings)

		viewings, err := postgres_adapter.NewViewingRepository(dbPool)
		if err != nil {
			return nil, nil, err
		}
		return listings, viewings, nil

	case configs.StoreMongo:
		client, err := mongo_adapter.NewClient(ctx, cfg.Mongo.URI)
		if err != nil {
			a.logger.Error("Failed to connect to MongoDB", err, nil)
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		a.closers = append(a.closers, func() { disconnectMongo(client) })

		db := client.Database(cfg.Mongo.Database)
		listings, err := mongo_adapter.NewListingRepository(db, baseLogger)
		if err != nil {
			return nil, nil, err
		}
		if err := listings.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, listings.Close)
		a.watchers = append(a.watchers, listings)

		viewings, err := mongo_adapter.NewViewingRepository(db)
		if err != nil {
			return nil, nil, err
		}
		return listings, viewings, nil

	default:
		listings := memory.NewListingRepository(baseLogger)
		if cfg.Store.SeedSamples {
			samples, err := memory.SampleListings()
			if err != nil {
				return nil, nil, err
			}
			listings.Seed(samples...)
			a.logger.Info("Sample listings seeded", port.Fields{"count": len(samples)})
		}
		a.closers = append(a.closers, listings.Close)
		return listings, memory.NewViewingRepository(), nil
	}
}

func (a *App) initEvents(baseLogger port.LoggerPort) (port.EventPublisherPort, error) {
	cfg := a.config

	schemas, err := contracts.DefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to compile event schemas: %w", err)
	}

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewManager(rabbitmq_common.Config{URL: cfg.RabbitMQ.URL}, connManagerBridge)
	if err != nil {
		a.logger.Error("Failed to create connection manager", err, nil)
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	})

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		ExchangeName:             cfg.RabbitMQ.Exchange,
		ExchangeType:             constants.EventsExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		ConfirmDelivery:          true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		a.logger.Error("Failed to create event producer", err, nil)
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := producer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	})

	return rabbitmq_adapter.NewEventsPublisherAdapter(producer, schemas)
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(stopCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()

		a.registry.Shutdown()
		a.close()
		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)
	errorsCh := make(chan error, 1)

	for _, w := range a.watchers {
		wg.Add(1)
		go func(w watcher) {
			defer wg.Done()
			if err := w.Watch(appCtx); err != nil {
				a.logger.Error("Store watcher stopped with an unexpected error", err, nil)
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.registry.RunSweeper(appCtx)
	}()

	go func() {
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			select {
			case errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err):
			default:
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	}

	cancelApp()
	return nil
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = client.Disconnect(ctx)
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
