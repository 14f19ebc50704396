package handlers

import (
	"github.com/rs/zerolog"

	"github.com/shortpost/shortpost/internal/cache"
	"github.com/shortpost/shortpost/internal/config"
	"github.com/shortpost/shortpost/internal/store"
)

type Handler struct {
	Auth  *AuthHandler
	Posts *PostHandler
}

func NewHandler(logger zerolog.Logger, st store.Store, pc cache.PostCache, cfg *config.Config) *Handler {
	return &Handler{
		Auth:  NewAuthHandler(logger, st, cfg),
		Posts: NewPostHandler(logger, st, pc, cfg),
	}
}
