package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-chi/chi/v5"

	"github.com/eleqt/eleqt-rides/internal/http/response"
	"github.com/eleqt/eleqt-rides/internal/platform/auth"
	"github.com/eleqt/eleqt-rides/internal/repo/postgres"
	"github.com/eleqt/eleqt-rides/internal/utils"
	"github.com/eleqt/eleqt-rides/pkg/logger"
)

type AuthHandler struct {
	Users     postgres.UsersRepo
	JWTSecret []byte
	TokenTTL  time.Duration
}

func NewAuthHandler(users postgres.UsersRepo, jwtSecret []byte, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{Users: users, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	return r
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (h *AuthHandler) writeAuth(w http.ResponseWriter, status int, u *postgres.User) {
	token, err := auth.NewAccessToken(h.JWTSecret, u.ID, u.Email, u.Role, h.TokenTTL)
	if err != nil {
		logger.Error("failed to sign access token", "error", err)
		response.InternalError(w, "could not create session")
		return
	}
	var out authResponse
	out.Token = token
	out.User.ID = u.ID
	out.User.Email = u.Email
	out.User.Name = u.Name
	out.User.Role = u.Role
	response.WriteJSON(w, status, out)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if in.Name == "" || in.Password == "" {
		response.BadRequest(w, "name and password are required")
		return
	}
	if len(in.Password) < 8 {
		response.BadRequest(w, "password must be at least 8 characters")
		return
	}
	if !utils.IsValidEmail(in.Email) {
		response.BadRequest(w, "invalid email address")
		return
	}
	if !utils.IsValidPhone(in.Phone) {
		response.BadRequest(w, "invalid phone number")
		return
	}

	email := utils.NormalizeEmail(in.Email)
	if existing, err := h.Users.FindByEmail(r.Context(), email); err != nil {
		response.InternalError(w, "could not check account")
		return
	} else if existing != nil {
		response.WriteError(w, http.StatusConflict, "an account with this email already exists", response.CodeEmailExists)
		return
	}

	hash, err := argon2id.CreateHash(in.Password, argon2id.DefaultParams)
	if err != nil {
		response.InternalError(w, "could not create account")
		return
	}

	u, err := h.Users.Create(r.Context(), email, hash, in.Name, utils.NormalizePhone(in.Phone))
	if err != nil {
		logger.Error("failed to create user", "error", err)
		response.InternalError(w, "could not create account")
		return
	}

	h.writeAuth(w, http.StatusCreated, u)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), utils.NormalizeEmail(in.Email))
	if err != nil {
		response.InternalError(w, "could not check account")
		return
	}
	if u == nil {
		response.Unauthorized(w, "invalid email or password")
		return
	}

	match, err := argon2id.ComparePasswordAndHash(in.Password, u.PasswordHash)
	if err != nil || !match {
		response.Unauthorized(w, "invalid email or password")
		return
	}

	h.writeAuth(w, http.StatusOK, u)
}
