package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/proxication/poi-api/internal/middleware"
)

// errDuplicate mimics the unique-violation error lib/pq returns.
func errDuplicate() error {
	return &pq.Error{Code: "23505"}
}

// asUser attaches an authenticated caller to the request context, the way the
// JWT middleware would.
func asUser(r *http.Request, id int, username string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, id)
	ctx = context.WithValue(ctx, middleware.UsernameKey, username)
	return r.WithContext(ctx)
}

// withURLID injects a chi route parameter "id", as the router would for
// /pois/{id} style routes.
func withURLID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
