package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"julianmorley.ca/con-plar/storefront/internal/account"
	"julianmorley.ca/con-plar/storefront/internal/cart"
	"julianmorley.ca/con-plar/storefront/internal/catalog"
	"julianmorley.ca/con-plar/storefront/internal/router"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/logger"
	"julianmorley.ca/con-plar/storefront/pkg/memstore"
	"julianmorley.ca/con-plar/storefront/pkg/mongo"
	"julianmorley.ca/con-plar/storefront/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	catalog catalog.Store
	cart    interface {
		cart.Store
		router.Pinger
	}
	users account.Store
}

func main() {
	envErr := godotenv.Load()

	cfg, err := global.LoadConfig()
	if err != nil {
		logger.Init(logger.Options{Level: "info", Console: true})
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Console: !cfg.IsProduction()})
	if envErr != nil {
		log.Warn().Msg("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("failed to open storage")
	}
	defer closeStores()

	var (
		itemCache catalog.Cache
		cartLock  cart.Locker
	)
	if cfg.RedisAddress != "" {
		connectCtx, cancel := global.WithDefaultTimeout(ctx)
		client, err := redis.Connect(connectCtx, redis.Options{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("address", cfg.RedisAddress).Msg("redis unavailable, running without item cache and with local cart locks")
		} else {
			defer client.Close()
			itemCache = redis.NewItemCache(client, cfg.CacheTTL)
			cartLock = redis.NewLocker(client, cfg.CartLockTTL)
			log.Info().Str("address", cfg.RedisAddress).Msg("connected to redis")
		}
	}

	catalogSvc := catalog.NewService(st.catalog, itemCache)
	h := &router.Handler{
		Catalog:  catalogSvc,
		Cart:     cart.NewService(st.cart, catalogSvc, cartLock),
		Accounts: account.NewService(st.users, account.NewBcryptHasher(cfg.BcryptCost)),
		AI: ai.NewClient(ai.Options{
			Endpoint:   cfg.OpenAIEndpoint,
			APIKey:     cfg.OpenAIKey,
			Deployment: cfg.OpenAIDeployment,
		}),
		Store: st.cart,
	}

	engine := router.InitEngine(cfg)
	router.InitializeRoutes(engine, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}

func openStores(ctx context.Context, cfg *global.Config) (*stores, func(), error) {
	if cfg.Storage == global.StorageMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &stores{
			catalog: memstore.NewCatalogStore(),
			cart:    memstore.NewCartStore(),
			users:   memstore.NewUserStore(),
		}, func() {}, nil
	}

	connectCtx, cancel := global.WithDefaultTimeout(ctx)
	defer cancel()

	db, err := mongo.InitMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}
	if err := mongo.EnsureIndexes(connectCtx, db); err != nil {
		closeFn()
		return nil, nil, err
	}

	return &stores{
		catalog: mongo.NewCatalogStore(db),
		cart:    mongo.NewCartStore(db),
		users:   mongo.NewUserStore(db),
	}, closeFn, nil
}
