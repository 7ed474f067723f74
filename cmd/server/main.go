package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"promptbattle/internal/cache"
	"promptbattle/internal/config"
	"promptbattle/internal/game"
	"promptbattle/internal/repository"
	"promptbattle/internal/service"
	"promptbattle/internal/transport/rest"
	"promptbattle/internal/transport/ws"
)

func main() {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.Load()
	imageCfg := config.DefaultImageGenConfig()
	evalCfg := config.DefaultEvaluatorConfig()

	if imageCfg.IsEnabled() {
		log.Info().Str("engine", imageCfg.EngineID).Msg("image generation: Stability configured")
	} else {
		log.Warn().Msg("image generation: STABILITY_API_KEY not set, using placeholder images")
	}
	if evalCfg.IsEnabled() {
		log.Info().Str("model", evalCfg.Model).Msg("prompt evaluation: Gemini configured")
	} else {
		log.Warn().Msg("prompt evaluation: GEMINI_API_KEY not set, using local scoring")
	}

	ctx := context.Background()

	// Mongo is optional: without it finished games simply are not archived.
	recaps := repository.NewMemoryRecapRepo()
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("failed to ping MongoDB")
		}
		cancel()
		recaps = repository.NewRecapRepo(mongoClient)
		log.Info().Msg("connected to MongoDB, recap archive enabled")
	} else {
		log.Warn().Msg("MONGO_URI not set, keeping recaps in memory")
	}

	// Redis is optional too: the evaluation cache degrades to in-process.
	evalCache := cache.NewMemoryEvalCache()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal().Err(err).Msg("failed to ping Redis")
		}
		evalCache = cache.NewEvalCache(rdb)
		log.Info().Msg("connected to Redis, evaluation cache enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, caching evaluations in memory")
	}

	hub := ws.NewHub(log)
	images := service.NewStabilityGenerator(imageCfg, log)
	evaluator := service.NewEvaluatorService(evalCfg, evalCache, log)

	registry := game.NewRegistry()
	manager := game.NewManager(registry, hub, images, recaps, game.DefaultConfig(), log)

	container := &rest.Container{
		Manager:   manager,
		Evaluator: evaluator,
		Recaps:    recaps,
		WSHandler: ws.NewHandler(hub, manager, log),
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen and serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
