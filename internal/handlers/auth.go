package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/shortpost/shortpost/internal/config"
	"github.com/shortpost/shortpost/internal/store"
	"github.com/shortpost/shortpost/internal/utils"
)

type AuthHandler struct {
	logger   zerolog.Logger
	store    store.Store
	cfg      *config.Config
	validate *validator.Validate
}

func NewAuthHandler(logger zerolog.Logger, st store.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		store:    st,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// ----------- Request/Response DTOs -------------

type signUpReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// -------------- SIGN UP ----------------------

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "a valid email and a password of at least 6 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if _, err := h.store.CreateUser(r.Context(), req.Email, string(hash)); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			utils.JSONError(w, http.StatusBadRequest, "email already registered")
			return
		}
		h.logger.Error().Err(err).Msg("signup: create user")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": "user registered successfully",
	})
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "email and password required")
		return
	}

	u, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		// same response as a bad password, no user enumeration here
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("login: get user")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(u.Email, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		h.logger.Error().Err(err).Msg("login: sign token")
		utils.JSONError(w, http.StatusInternalServerError, "token error")
		return
	}

	utils.JSON(w, http.StatusOK, tokenResp{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
