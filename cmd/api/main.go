package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/shortpost/shortpost/internal/cache"
	"github.com/shortpost/shortpost/internal/config"
	"github.com/shortpost/shortpost/internal/db"
	"github.com/shortpost/shortpost/internal/handlers"
	"github.com/shortpost/shortpost/internal/middleware"
	"github.com/shortpost/shortpost/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}

	logger := newLogger(cfg)

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnLifetime)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect")
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn); err != nil {
		logger.Fatal().Err(err).Msg("db migrate")
	}

	ctx := context.Background()

	postCache, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.PostsCacheTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect")
	}

	h := handlers.NewHandler(logger, store.New(dbConn), postCache, cfg)

	r := chi.NewRouter()

	// Public
	r.Post("/signup", h.Auth.SignUp)
	r.Post("/login", h.Auth.Login)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		r.Post("/addPost", h.Posts.AddPost)
		r.Get("/getPosts", h.Posts.GetPosts)
		r.Delete("/deletePost", h.Posts.DeletePost)
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsProduction() {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
