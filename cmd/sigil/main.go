package main

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	goredis "github.com/redis/go-redis/v9"

	"github.com/layer-3/sigil/adapters/events"
	"github.com/layer-3/sigil/adapters/store/postgres"
	redisstore "github.com/layer-3/sigil/adapters/store/redis"
	"github.com/layer-3/sigil/adapters/tokenizer"
	"github.com/layer-3/sigil/internal/config"
	"github.com/layer-3/sigil/internal/logging"
	"github.com/layer-3/sigil/service"
	"github.com/layer-3/sigil/transport/http"
)

func main() {
	log := logging.NewLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	dsn, err := cfg.Postgres.DSN()
	if err != nil {
		log.Fatalf("failed to resolve database config: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	opts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("failed to parse Redis URL: %v", err)
	}
	redisClient := goredis.NewClient(opts)
	defer redisClient.Close()

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		log.Fatalf("failed to create event publisher: %v", err)
	}

	stores := service.Stores{
		Challenges:  store,
		Users:       store,
		Events:      store,
		Revocations: redisstore.NewRevocationCache(redisClient, store),
	}

	authService := service.NewAuthService(
		stores,
		tokenizer.NewJWTTokenizer([]byte(cfg.Auth.JWTSecret)),
		service.NewRateLimiter(store, log),
		events.NewWatermillPublisher(publisher),
		cfg.Auth.Domain,
		log,
	)

	router := http.SetupRouter(authService)

	log.Infow("starting server", "addr", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
