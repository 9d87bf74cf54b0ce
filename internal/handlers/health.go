package handlers

import "net/http"

// Health reports API liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]string{"status": "ok", "message": "API is running"}, http.StatusOK)
}
