package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/config"
	"github.com/iliyamo/filmorate/internal/database"
	"github.com/iliyamo/filmorate/internal/handler"
	"github.com/iliyamo/filmorate/internal/logging"
	"github.com/iliyamo/filmorate/internal/middleware"
	"github.com/iliyamo/filmorate/internal/queue"
	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/repository/memory"
	"github.com/iliyamo/filmorate/internal/router"
	"github.com/iliyamo/filmorate/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store  repository.Store
		health echo.HandlerFunc
	)
	switch cfg.StoreBackend {
	case config.BackendMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			logging.Fatal().Err(err).Msg("open mysql")
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			logging.Fatal().Err(err).Msg("migrate schema")
		}
		store = repository.NewMySQLStore(db)
		health = handler.Health(db)
	default:
		store = memory.New()
		health = handler.Health(nil)
	}

	var feedOpts []service.FeedOption
	if cfg.FeedPublishEnabled {
		pub := queue.NewPublisher(cfg.RabbitURL, queue.NewBreaker(config.LoadBreakerConfig()), config.LoadPublisherConfig())
		defer pub.Close()
		feedOpts = append(feedOpts, service.WithPublisher(pub))
	}
	if cfg.FeedConsumerEnabled {
		go func() {
			if err := queue.StartFeedConsumer(ctx, cfg.RabbitURL, cfg.FeedLogPath); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Msg("feed consumer stopped")
			}
		}()
	}

	var graphOpts []service.GraphOption
	if cfg.FriendPolicy == config.FriendPolicyMutual {
		graphOpts = append(graphOpts, service.WithFriendPolicy(service.MutualOnlyPolicy))
	}
	if cfg.StrictLikes {
		graphOpts = append(graphOpts, service.WithStrictLikes())
	}
	h := handler.New(handler.NewServices(store, feedOpts, graphOpts...))

	rdb := config.NewRedisClient()
	if rdb == nil {
		logging.Warn().Msg("redis unreachable, rate limiting and dictionary cache disabled")
	} else {
		defer rdb.Close()
	}

	e := router.New(h,
		router.Options{
			Health:          health,
			DictionaryCache: middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		},
		middleware.RequestLogger(),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreBackend).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
	logging.Info().Msg("stopped")
}
