package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/proxication/poi-api/internal/metrics"
	"github.com/proxication/poi-api/internal/middleware"
	"github.com/proxication/poi-api/internal/repo"
	"github.com/proxication/poi-api/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves register, login and logout.
type AuthHandler struct {
	Users     *repo.UserRepo
	Tokens    *repo.TokenRepo
	AuditRepo *repo.AuditRepo
	Issuer    *token.Issuer
}

// Register creates a new account. Password and confirmation must match.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string `json:"username" validate:"required,max=150"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8"`
		Password2 string `json:"password2" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}
	if input.Password != input.Password2 {
		JSONValidationError(w, "validation failed",
			map[string]string{"password": "Password fields do not match."}, http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user, err := h.Users.Create(r.Context(), input.Username, input.Email, string(hash))
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			JSONValidationError(w, "validation failed",
				map[string]string{"username": "A user with that username or email already exists."},
				http.StatusBadRequest)
			return
		}
		slog.Error("register: create user failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.AuditRepo != nil {
		_ = h.AuditRepo.Log(r.Context(), user.ID, "create", "user", user.ID, "")
	}

	JSONResponse(w, user, http.StatusCreated)
}

// Login verifies the credentials and issues an access/refresh pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), input.Username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, MsgInvalidCredentials, http.StatusUnauthorized)
			return
		}
		slog.Error("login: fetch user failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		JSONError(w, MsgInvalidCredentials, http.StatusUnauthorized)
		return
	}

	pair, err := h.Issuer.IssuePair(user.ID, user.Username)
	if err != nil {
		slog.Error("login: issue token pair failed", "error", err)
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	JSONResponse(w, map[string]interface{}{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    user,
	}, http.StatusOK)
}

// Logout blacklists the presented refresh token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Refresh string `json:"refresh"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Refresh == "" {
		JSONValidationError(w, "validation failed",
			map[string]string{"refresh": "This field is required."}, http.StatusBadRequest)
		return
	}

	claims, err := h.Issuer.ParseRefresh(input.Refresh)
	if err != nil {
		JSONError(w, "Token is invalid or expired.", http.StatusBadRequest)
		return
	}

	blacklisted, err := h.Tokens.IsBlacklisted(r.Context(), claims.ID)
	if err != nil {
		slog.Error("logout: blacklist lookup failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if blacklisted {
		JSONError(w, "Token is blacklisted.", http.StatusBadRequest)
		return
	}

	err = h.Tokens.Blacklist(r.Context(), claims.ID, claims.UserID, claims.ExpiresAt.Time)
	if err != nil {
		// ErrConflict here means a concurrent logout won the insert race.
		if errors.Is(err, repo.ErrConflict) {
			JSONError(w, "Token is blacklisted.", http.StatusBadRequest)
			return
		}
		slog.Error("logout: blacklist failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	metrics.IncTokensBlacklisted()

	if callerID, ok := middleware.GetUserID(r.Context()); ok {
		slog.Info("user logged out", "user_id", callerID)
	}

	JSONResponse(w, map[string]string{"msg": "Successfully logged out."}, http.StatusOK)
}
