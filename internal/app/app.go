// -----------------------------------------------------------------------
// Application wiring - storage, events, session manager, HTTP handlers
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/backend"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/common"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/handlers"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/services/events"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/session"
	badgerstore "github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB             *badgerstore.BadgerDB
	SessionStorage interfaces.SessionStorage

	// Event bus
	EventService interfaces.EventService

	// Backend access
	Backend interfaces.GenerationBackend
	Feed    interfaces.ChangeFeed

	// Session monitoring
	SessionManager *session.Manager

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	DemoHandler   *handlers.DemoHandler
	StatusHandler *handlers.StatusHandler
	WSHandler     *handlers.WebSocketHandler

	// Service log fan-out to UI clients
	LogStreamer *handlers.LogStreamer
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Storage
	db, err := badgerstore.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db
	app.SessionStorage = badgerstore.NewSessionStorage(db, logger)
	logger.Debug().
		Str("storage", "badger").
		Str("path", cfg.Storage.Badger.Path).
		Msg("Storage layer initialized")

	// Event bus and websocket hub. The hub subscribes to session events so
	// every snapshot the manager publishes reaches connected UI clients.
	app.EventService = events.NewService(logger)
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, logger, &cfg.WebSocket)

	// Stream service log lines to connected clients alongside session events
	app.LogStreamer = handlers.NewLogStreamer(app.WSHandler, &cfg.WebSocket, logger)
	app.LogStreamer.Start()

	// Backend clients
	backendClient := backend.NewClient(cfg.Backend, logger)
	app.Backend = backendClient
	app.Feed = backend.NewRealtimeFeed(cfg.Backend, logger)

	// Session manager
	manager, err := session.NewManager(
		app.Backend,
		app.Feed,
		app.SessionStorage,
		app.EventService,
		cfg.Monitor,
		cfg.Cleanup,
		logger,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}
	app.SessionManager = manager

	// HTTP handlers
	app.APIHandler = handlers.NewAPIHandler()
	app.DemoHandler = handlers.NewDemoHandler(manager, logger)
	app.StatusHandler = handlers.NewStatusHandler(manager, logger)

	logger.Info().
		Str("backend", cfg.Backend.BaseURL).
		Msg("Application initialization complete")

	return app, nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.SessionManager != nil {
		if err := a.SessionManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close session manager")
		}
	}

	if a.LogStreamer != nil {
		if err := a.LogStreamer.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close log streamer")
		}
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
