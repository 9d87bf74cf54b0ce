package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/proxication/poi-api/internal/middleware"
	"github.com/proxication/poi-api/internal/repo"
)

// UserHandler serves the caller's own account plus the account listing.
type UserHandler struct {
	Repo      *repo.UserRepo
	AuditRepo *repo.AuditRepo
}

// Me returns the authenticated caller's account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
		return
	}

	user, err := h.Repo.GetByID(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, MsgNotFound, http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONResponse(w, user, http.StatusOK)
}

// UpdateMe replaces the caller's username and email.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
		return
	}

	var input struct {
		Username string `json:"username" validate:"required,max=150"`
		Email    string `json:"email" validate:"required,email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	user, err := h.Repo.Update(r.Context(), callerID, input.Username, input.Email)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			JSONError(w, MsgNotFound, http.StatusNotFound)
		case errors.Is(err, repo.ErrConflict):
			JSONValidationError(w, "validation failed",
				map[string]string{"username": "A user with that username or email already exists."},
				http.StatusBadRequest)
		default:
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}

	if h.AuditRepo != nil {
		_ = h.AuditRepo.Log(r.Context(), callerID, "update", "user", callerID, "")
	}

	JSONResponse(w, user, http.StatusOK)
}

// DeleteMe removes the caller's account. Owned POIs cascade in the database.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
		return
	}

	if err := h.Repo.Delete(r.Context(), callerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, MsgNotFound, http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.AuditRepo != nil {
		_ = h.AuditRepo.Log(r.Context(), callerID, "delete", "user", callerID, "")
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers returns every account. Any authenticated caller may list; there is
// no elevated-role check.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Repo.List(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONResponse(w, users, http.StatusOK)
}
