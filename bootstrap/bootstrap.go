// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jihun-01/scratcha-dashboard/adapters/clock"
	"github.com/jihun-01/scratcha-dashboard/adapters/datagen"
	"github.com/jihun-01/scratcha-dashboard/adapters/idgen"
	"github.com/jihun-01/scratcha-dashboard/adapters/metrics"
	"github.com/jihun-01/scratcha-dashboard/adapters/remote"
	"github.com/jihun-01/scratcha-dashboard/adapters/session"
	"github.com/jihun-01/scratcha-dashboard/adapters/sqlite"
	"github.com/jihun-01/scratcha-dashboard/app"
	"github.com/jihun-01/scratcha-dashboard/config"
	"github.com/jihun-01/scratcha-dashboard/domain/usage"
	"github.com/jihun-01/scratcha-dashboard/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	Store      *app.Dashboard
	Session    *session.Manager
	Metrics    *metrics.Collector
	HTTPServer *http.Server
}

// New creates and initializes the application from configuration.
func New(cfg *config.Config) (*App, error) {
	logger := SetupLogger(cfg.Logging)
	logger.Info().Msg("initializing scratcha dashboard")

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	a.DB = db
	logger.Info().Str("dsn", cfg.Database.DSN).Msg("database ready")

	ctx := context.Background()
	realClock := clock.Real{}

	events := sqlite.NewEventStore(db)
	settings := sqlite.NewSettingsStore(db)

	gen := datagen.New(cfg.Dashboard.Seed)

	// A fresh database gets a session event pool; an existing pool stays
	// session-fixed across restarts.
	if err := seedPool(ctx, events, gen, realClock.Now(), cfg.Dashboard.PoolSize, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed event pool: %w", err)
	}

	sess, err := session.NewManager(ctx, settings, realClock)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	a.Session = sess

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	backend := remote.NewClient(remote.ClientConfig{
		BaseURL: cfg.Backend.URL,
		Tokens:  sess,
		Timeout: cfg.Backend.Timeout,
		Headers: cfg.Backend.Headers,
	})

	scenario := usage.Scenario(cfg.Dashboard.Scenario)
	if cfg.Dashboard.Scenario == "random" {
		scenario = gen.PickScenario()
	}

	store, err := app.New(ctx, app.Config{
		Logger:              logger.With().Str("component", "dashboard").Logger(),
		Clock:               realClock,
		IDs:                 idgen.UUID{},
		Events:              events,
		Datasets:            datagen.Suite{},
		Apps:                remote.NewApplicationAPI(backend),
		Keys:                remote.NewKeyAPI(backend),
		Metrics:             a.Metrics,
		PlanName:            cfg.Dashboard.DefaultPlan,
		AvgTokensPerRequest: cfg.Dashboard.AvgTokensPerRequest,
		Scenario:            scenario,
		InitialApps:         datagen.DemoApps(),
		InitialKeys:         datagen.DemoKeys(),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init dashboard store: %w", err)
	}
	a.Store = store

	handler := web.NewHandler(web.Deps{
		Store:          store,
		Account:        remote.NewAccountAPI(backend),
		Session:        sess,
		Logger:         logger.With().Str("component", "web").Logger(),
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// seedPool fills the event store on first run.
func seedPool(ctx context.Context, events *sqlite.EventStore, gen *datagen.Generator, now time.Time, size int, logger zerolog.Logger) error {
	n, err := events.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info().Int("events", n).Msg("reusing existing event pool")
		return nil
	}

	pool := gen.Pool(now, size)
	if err := events.Replace(ctx, pool); err != nil {
		return err
	}
	logger.Info().Int("events", len(pool)).Msg("seeded event pool")
	return nil
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// SetupLogger builds the process logger from the logging configuration.
func SetupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
