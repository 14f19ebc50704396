package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/shortpost/shortpost/internal/cache"
	"github.com/shortpost/shortpost/internal/config"
	"github.com/shortpost/shortpost/internal/store"
	"github.com/shortpost/shortpost/internal/utils"
)

type PostHandler struct {
	logger zerolog.Logger
	store  store.Store
	cache  cache.PostCache
	cfg    *config.Config
}

func NewPostHandler(logger zerolog.Logger, st store.Store, pc cache.PostCache, cfg *config.Config) *PostHandler {
	return &PostHandler{
		logger: logger,
		store:  st,
		cache:  pc,
		cfg:    cfg,
	}
}

func subjectEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(utils.CtxEmailKey).(string)
	return email, ok && email != ""
}

// ---------------------- CREATE ----------------------

// AddPost accepts a multipart form with a "text" field and a "file" part.
// The file is only size-gated, its content is discarded.
func (h *PostHandler) AddPost(w http.ResponseWriter, r *http.Request) {
	email, ok := subjectEmail(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "token is invalid")
		return
	}

	// 32 KB in memory is plenty, the file part is never read
	if err := r.ParseMultipartForm(32 << 10); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadBytes {
		utils.JSONError(w, http.StatusBadRequest, "file size too large")
		return
	}

	text := r.FormValue("text")
	if text == "" {
		utils.JSONError(w, http.StatusBadRequest, "text is required")
		return
	}

	u, err := h.store.GetUserByEmail(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("add post: get user")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	post, err := h.store.CreatePost(r.Context(), u.ID, text)
	if err != nil {
		h.logger.Error().Err(err).Msg("add post: create")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// drop the cached list so the next fetch sees the new post
	if err := h.cache.Invalidate(r.Context(), email); err != nil {
		h.logger.Warn().Err(err).Str("email", email).Msg("add post: cache invalidate")
	}

	utils.JSON(w, http.StatusOK, map[string]int64{"postID": post.ID})
}

// ---------------------- LIST ----------------------

// GetPosts serves the requester's posts, from cache when a fresh entry
// exists. A hit answers without touching the store at all.
func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	email, ok := subjectEmail(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "token is invalid")
		return
	}

	cached, found, err := h.cache.Get(r.Context(), email)
	if err != nil {
		// degrade to a store read
		h.logger.Warn().Err(err).Str("email", email).Msg("get posts: cache read")
	}
	if found {
		utils.JSON(w, http.StatusOK, cached)
		return
	}

	u, err := h.store.GetUserByEmail(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("get posts: get user")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	posts, err := h.store.ListPostsByUser(r.Context(), u.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("get posts: list")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.cache.Set(r.Context(), email, posts); err != nil {
		h.logger.Warn().Err(err).Str("email", email).Msg("get posts: cache write")
	}

	utils.JSON(w, http.StatusOK, posts)
}

// ---------------------- DELETE ----------------------

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	email, ok := subjectEmail(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "token is invalid")
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("post_id"), 10, 64)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid post_id")
		return
	}

	post, err := h.store.GetPostByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("delete post: get post")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	u, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil || post.UserID != u.ID {
		utils.JSONError(w, http.StatusForbidden, "unauthorized to delete this post")
		return
	}

	if err := h.store.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "post not found")
			return
		}
		h.logger.Error().Err(err).Msg("delete post: delete")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.cache.Invalidate(r.Context(), email); err != nil {
		h.logger.Warn().Err(err).Str("email", email).Msg("delete post: cache invalidate")
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": "post deleted successfully",
	})
}
