// Command server runs the Vytalle storefront API.
//
// @title        Vytalle Storefront API
// @version      1.0
// @description  Session authority and role-gated catalog for the Vytalle storefront.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/vytalle/storefront/docs"
	"github.com/vytalle/storefront/internal/api"
	"github.com/vytalle/storefront/internal/api/handler"
	"github.com/vytalle/storefront/internal/api/metrics"
	"github.com/vytalle/storefront/internal/core/ports"
	"github.com/vytalle/storefront/internal/core/resilience"
	"github.com/vytalle/storefront/internal/core/service"
	mongostore "github.com/vytalle/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/vytalle/storefront/internal/infrastructure/db/redis"
	"github.com/vytalle/storefront/internal/infrastructure/memory"
	"github.com/vytalle/storefront/internal/infrastructure/queue"
	"github.com/vytalle/storefront/internal/pkg/config"
	"github.com/vytalle/storefront/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	probeTimeout    = 2 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "storefront",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// backends are the collaborators chosen by configuration.
type backends struct {
	stores   ports.SessionScoper
	source   ports.ProductSource
	users    ports.UserRepository
	creds    ports.CredentialStore
	events   ports.SessionEventRepository
	checks   map[string]handler.Check
	closeFns []func(context.Context)
}

func (b *backends) close(ctx context.Context) {
	for i := len(b.closeFns) - 1; i >= 0; i-- {
		b.closeFns[i](ctx)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close(context.Background())

	engine := resilience.NewEngine(log, resilience.Options{
		MaxRetries: cfg.Retry.Max,
		BaseDelay:  cfg.Retry.BaseDelay,
		Observer:   metrics.ResilienceObserver{},
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	audit := queue.NewAuditDispatcher(cfg.AuditWorkers, b.events, log)
	audit.Start(workerCtx)
	defer func() {
		stopWorkers()
		audit.Wait()
	}()

	// Handlers rebind this authority to each caller's scope.
	sessions, err := service.NewSessionAuthority(b.stores.Scope("server"), b.users, b.creds, engine, log, service.SessionConfig{
		Secret:  cfg.Session.Secret,
		TTL:     cfg.Session.TTL,
		Auditor: audit,
	})
	if err != nil {
		return err
	}
	products := service.NewProductAccess(b.source, engine, log, service.ProductOptions{
		CacheTTL: cfg.Catalog.CacheTTL,
		Observer: metrics.CacheObserver{},
	})

	e := api.NewRouter(api.Deps{
		Log:           log,
		Engine:        engine,
		Sessions:      sessions,
		Stores:        b.stores,
		Products:      products,
		Checks:        b.checks,
		SecureCookies: cfg.IsProduction(),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{checks: make(map[string]handler.Check)}

	switch cfg.Session.Backend {
	case config.BackendRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		b.closeFns = append(b.closeFns, func(context.Context) { _ = rdb.Close() })
		b.stores = redisstore.NewSessionStore(rdb, "", cfg.Session.TTL)
		b.checks["redis"] = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb, probeTimeout) }
	default:
		b.stores = memory.NewSessionStore()
	}

	switch cfg.Catalog.Backend {
	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			b.close(ctx)
			return nil, err
		}
		b.closeFns = append(b.closeFns, func(ctx context.Context) { _ = client.Disconnect(ctx) })
		b.checks["mongodb"] = func(ctx context.Context) error { return mongostore.Ping(ctx, client, probeTimeout) }

		productRepo := mongostore.NewProductRepository(db)
		userRepo := mongostore.NewUserRepository(db)
		if err := productRepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("could not ensure product indexes")
		}
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("could not ensure user indexes")
		}
		if !cfg.IsProduction() {
			if err := seedMongo(ctx, productRepo, userRepo); err != nil {
				b.close(ctx)
				return nil, err
			}
		}
		b.source, b.users, b.creds = productRepo, userRepo, userRepo
		b.events = mongostore.NewSessionEventRepository(db)
	default:
		users, err := memory.NewUserRepository(memory.DemoAccounts(), bcrypt.DefaultCost)
		if err != nil {
			b.close(ctx)
			return nil, err
		}
		b.source = memory.NewCatalog(memory.SeedProducts())
		b.users, b.creds = users, users
		b.events = memory.NewSessionEventLog(log)
	}

	return b, nil
}

// seedMongo loads the demo catalog and accounts outside production.
func seedMongo(ctx context.Context, products *mongostore.ProductRepository, users *mongostore.UserRepository) error {
	for _, p := range memory.SeedProducts() {
		if err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
	}
	for _, a := range memory.DemoAccounts() {
		if err := users.UpsertWithPassword(ctx, a.User, a.Password, bcrypt.DefaultCost); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}
	return nil
}
