package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"incident-horoscope/internal/config"
	"incident-horoscope/internal/fetcher"
	"incident-horoscope/internal/observability"
	"incident-horoscope/internal/server"
	"incident-horoscope/internal/service"
	"incident-horoscope/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.EphemerisFetcher {
	return fetcher.NewHorizons(fetcher.HorizonsOptions{
		BaseURL:   a.Config.Horizons.BaseURL,
		Timeout:   a.Config.Horizons.RequestTimeout,
		UserAgent: a.Config.Horizons.UserAgent,
	}, a.Logger)
}

func (a *App) newService(store *storage.Store, metrics *observability.Metrics) *service.Service {
	var recordStore storage.RecordStore
	if store != nil {
		recordStore = store
	}

	return service.New(service.Options{
		BodyDelay: a.Config.Fetch.BodyDelay,
		DateDelay: a.Config.Fetch.DateDelay,
	}, a.newFetcher(), recordStore, metrics, nil, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Serve runs the HTTP API until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; records will be re-acquired on every request")
	}
	if closeStore != nil {
		defer closeStore()
	}

	metrics := observability.NewMetrics()
	svc := a.newService(store, metrics)
	handler := server.NewHandler(svc, a.Config.Fetch.DefaultLocation, a.Logger)
	srv := server.New(a.Config.Server, handler, a.Logger)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("address", srv.Addr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("http server shutdown failed")
		return err
	}

	a.Logger.Info().Msg("http server stopped")
	return <-errCh
}

// FetchOptions configure a one-shot acquisition run.
type FetchOptions struct {
	Dates    []time.Time
	Location string
}

// HoroscopeOptions configure the horoscope command.
type HoroscopeOptions struct {
	Date      time.Time
	BirthDate *time.Time
	Location  string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// ExportOptions hold parameters for exporting a body's position history.
type ExportOptions struct {
	Body      string
	Location  string
	From      *time.Time
	To        *time.Time
	CSVPath   string
	PNGPath   string
	MaxPoints int
}
