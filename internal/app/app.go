// Package app wires configuration, storage and use cases into a Mediator.
// It is built once per process and shared by every boundary.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"api_commerce/internal/config"
	"api_commerce/internal/customers"
	"api_commerce/internal/domain"
	"api_commerce/internal/mediator"
	"api_commerce/internal/metrics"
	"api_commerce/internal/products"
	"api_commerce/internal/sales"
	"api_commerce/internal/storage/memory"
	"api_commerce/internal/storage/sqlstore"
)

// App is the dependency container.
type App struct {
	Mediator *mediator.Mediator
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Logger   *zap.Logger

	closers []func() error
	ping    func(context.Context) error
}

// repositories is what a store driver provides.
type repositories struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	sales     domain.SaleRepository
	tx        domain.Transactor
}

// New opens the configured store and registers every handler.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(a.Registry)

	repos, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.Mediator = mediator.New(logger, a.Metrics)
	customers.Register(a.Mediator, customers.NewService(repos.customers, logger.Named("customers"), cfg.MaxPerPage))
	products.Register(a.Mediator, products.NewService(repos.products, logger.Named("products"), cfg.MaxPerPage))
	sales.Register(a.Mediator, sales.NewService(sales.Deps{
		Customers:  repos.customers,
		Products:   repos.products,
		Sales:      repos.sales,
		Tx:         repos.tx,
		Metrics:    a.Metrics,
		Logger:     logger.Named("sales"),
		MaxPerPage: cfg.MaxPerPage,
	}))

	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.Config) (repositories, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		l := memory.NewLocalStorage()
		a.Logger.Info("using in-memory store")
		return repositories{
			customers: l.Customers(),
			products:  l.Products(),
			sales:     l.Sales(a.Logger.Named("salejoin")),
			tx:        l,
		}, nil
	case config.DriverSQLite, config.DriverPostgres:
		var (
			s   *sqlstore.Store
			err error
		)
		if cfg.StoreDriver == config.DriverSQLite {
			a.Logger.Info("opening sqlite store", zap.String("path", cfg.SQLitePath), zap.String("build", sqlstore.BuildMode))
			s, err = sqlstore.OpenSQLite(ctx, cfg.SQLitePath, a.Logger.Named("sqlstore"))
		} else {
			a.Logger.Info("opening postgres store", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
			s, err = sqlstore.OpenPostgres(ctx, cfg.PostgresDSN(), cfg.DBMaxOpenConns, a.Logger.Named("sqlstore"))
		}
		if err != nil {
			return repositories{}, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
		}
		a.closers = append(a.closers, s.Close)
		a.ping = s.Ping
		a.Logger.Info("store ready", zap.String("dialect", s.Dialect()), zap.String("driver", cfg.StoreDriver))
		return repositories{
			customers: s.Customers(),
			products:  s.Products(),
			sales:     s.Sales(),
			tx:        s,
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Ready reports whether the store can serve requests. The in-memory store
// is always ready.
func (a *App) Ready(ctx context.Context) error {
	if a.ping == nil {
		return nil
	}
	return a.ping(ctx)
}

// Close releases the store.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
