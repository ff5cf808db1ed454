// Package server assembles the GhostTips server: it picks the encryption
// provider, storage backend and optional integrations from the config,
// restores the ledger and runs the gRPC and HTTP front ends until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/ghosttips/internal/fhe"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/dmitrijs2005/ghosttips/internal/logging"
	"github.com/dmitrijs2005/ghosttips/internal/server/config"
	"github.com/dmitrijs2005/ghosttips/internal/server/events"
	"github.com/dmitrijs2005/ghosttips/internal/server/httpapi"
	"github.com/dmitrijs2005/ghosttips/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ghosttips/internal/server/snapshots"
	"github.com/dmitrijs2005/ghosttips/internal/server/storage"

	gs "github.com/dmitrijs2005/ghosttips/internal/server/grpc"
)

var (
	sqlOpen               = sql.Open
	logOutput   io.Writer = os.Stdout
	natsConnect           = func(url string) (events.Publisher, func() error, error) {
		nc, err := events.Connect(url, "ghosttips")
		if err != nil {
			return nil, nil, err
		}
		return nc, nc.Drain, nil
	}
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	ledger   *ledger.Ledger
	exporter gs.Exporter
	closers  []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	app := &App{
		config: c,
		logger: logging.NewJSON(logOutput, c.LogLevel),
	}

	provider, err := app.newProvider()
	if err != nil {
		return nil, fmt.Errorf("encryption init error: %w", err)
	}

	store, err := app.newStore(ctx)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	notifier, err := app.newNotifier()
	if err != nil {
		app.close()
		return nil, fmt.Errorf("nats init error: %w", err)
	}

	lg, err := ledger.New(ctx, ledger.Config{
		Rate: c.ExchangeRate,
		Limits: ledger.Limits{
			MaxNameLength:        c.MaxNameLength,
			MaxDescriptionLength: c.MaxDescriptionLength,
			MaxMessageLength:     c.MaxMessageLength,
		},
	}, provider, store, notifier, app.logger)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("ledger init error: %w", err)
	}
	app.ledger = lg

	if c.S3Bucket != "" {
		app.exporter = snapshots.NewS3Exporter(snapshots.Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			URLTTL:       c.SnapshotURLTTL,
		}, lg, app.logger)
	}

	return app, nil
}

func (app *App) newProvider() (fhe.Provider, error) {
	if app.config.EncryptionSecret == "" {
		app.logger.Warn(context.Background(), "no encryption secret configured, balances are kept in process memory")
		return fhe.NewMemoryProvider(), nil
	}
	return fhe.NewSealedProviderFromSecret(app.config.EncryptionSecret, app.config.EncryptionSalt)
}

func (app *App) newStore(ctx context.Context) (ledger.Store, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database configured, ledger state will not survive a restart")
		return ledger.NewMemoryStore(), nil
	}

	db, err := sqlOpen("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, db.Close)

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return storage.NewPostgresStore(db, repos), nil
}

func (app *App) newNotifier() (ledger.Notifier, error) {
	if app.config.NATSURL == "" {
		return nil, nil
	}

	pub, closeFn, err := natsConnect(app.config.NATSURL)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeFn)

	return events.NewNATSNotifier(pub, app.config.NATSSubjectPrefix), nil
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close", "error", err.Error())
		}
	}
	app.closers = nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.ledger, app.exporter, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger, app.ledger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is canceled, a termination signal arrives or one of
// the servers fails. Resources opened by NewApp are released on return.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "rate", app.config.ExchangeRate)

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.close()

	app.logger.Info(context.Background(), "App stopped")
}
