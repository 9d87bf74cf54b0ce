package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/proxication/poi-api/internal/middleware"
	"github.com/proxication/poi-api/internal/models"
	"github.com/proxication/poi-api/internal/repo"
)

// POIHandler serves CRUD on points of interest.
type POIHandler struct {
	Repo      *repo.POIRepo
	AuditRepo *repo.AuditRepo
}

// poiInput is the client-writable subset of a POI. created_by and timestamps
// are server-assigned; any client-supplied values for them are ignored.
// Latitude/longitude are pointers so that 0 passes the required check.
type poiInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
}

// authorize reports whether the caller owns the record. Applied to
// single-record reads and writes only; List deliberately returns every POI
// to every authenticated caller.
func authorize(p *models.POI, callerID int) bool {
	return p.CreatedBy == callerID
}

// ListPOIs returns all POIs system-wide, newest first.
func (h *POIHandler) ListPOIs(w http.ResponseWriter, r *http.Request) {
	pois, err := h.Repo.List(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONResponse(w, pois, http.StatusOK)
}

// CreatePOI validates the input and stores a new POI owned by the caller.
func (h *POIHandler) CreatePOI(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
		return
	}

	var input poiInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	poi := &models.POI{
		Name:        input.Name,
		Description: input.Description,
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
		CreatedBy:   callerID,
	}

	if err := h.Repo.Insert(r.Context(), poi); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if username, ok := middleware.GetUsername(r.Context()); ok {
		poi.CreatedByUsername = username
	}

	if h.AuditRepo != nil {
		_ = h.AuditRepo.Log(r.Context(), callerID, "create", "poi", poi.ID, "")
	}

	JSONResponse(w, poi, http.StatusCreated)
}

// GetPOI returns a single POI; only its owner may read it.
func (h *POIHandler) GetPOI(w http.ResponseWriter, r *http.Request) {
	poi, _, ok := h.fetchOwned(w, r)
	if !ok {
		return
	}

	JSONResponse(w, poi, http.StatusOK)
}

// UpdatePOI replaces the POI's client-writable fields. Full replace: missing
// fields fail validation rather than being kept.
func (h *POIHandler) UpdatePOI(w http.ResponseWriter, r *http.Request) {
	poi, callerID, ok := h.fetchOwned(w, r)
	if !ok {
		return
	}

	var input poiInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	poi.Name = input.Name
	poi.Description = input.Description
	poi.Latitude = *input.Latitude
	poi.Longitude = *input.Longitude

	if err := h.Repo.Update(r.Context(), poi); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, MsgNotFound, http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.AuditRepo != nil {
		_ = h.AuditRepo.Log(r.Context(), callerID, "update", "poi", poi.ID, "")
	}

	JSONResponse(w, poi, http.StatusOK)
}

// DeletePOI permanently removes the POI. Responds 204 with an empty body;
// a body on 204 would be dropped by net/http anyway.
func (h *POIHandler) DeletePOI(w http.ResponseWriter, r *http.Request) {
	poi, callerID, ok := h.fetchOwned(w, r)
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), poi.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, MsgNotFound, http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.AuditRepo != nil {
		_ = h.AuditRepo.Log(r.Context(), callerID, "delete", "poi", poi.ID, "")
	}

	w.WriteHeader(http.StatusNoContent)
}

// fetchOwned loads the POI from the URL id and enforces the ownership rule.
// On failure it writes the error response and returns ok=false.
func (h *POIHandler) fetchOwned(w http.ResponseWriter, r *http.Request) (*models.POI, int, bool) {
	callerID, okCaller := middleware.GetUserID(r.Context())
	if !okCaller {
		JSONError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
		return nil, 0, false
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, MsgNotFound, http.StatusNotFound)
		return nil, 0, false
	}

	poi, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, MsgNotFound, http.StatusNotFound)
			return nil, 0, false
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return nil, 0, false
	}

	if !authorize(poi, callerID) {
		JSONError(w, MsgForbidden, http.StatusForbidden)
		return nil, 0, false
	}

	return poi, callerID, true
}
