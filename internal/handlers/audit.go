package handlers

import (
	"net/http"

	"github.com/proxication/poi-api/internal/repo"
)

// auditListCap bounds the audit listing; there is no pagination on this API.
const auditListCap = 100

// AuditHandler serves the audit log.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns the most recent audit log entries, newest first.
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Repo.List(r.Context(), auditListCap)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONResponse(w, entries, http.StatusOK)
}
