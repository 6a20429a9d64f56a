package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/mautomotiv/inventaire/internal/model"
	"github.com/mautomotiv/inventaire/internal/store"
)

// DashboardHandler serves the home page counters.
type DashboardHandler struct {
	DB *sql.DB
}

// Get handles GET /api/dashboard?branche=. Administrators get the overview
// of every branch, or the counts of one branch when they name it. A
// responsable gets the counts of their own branch, zero when they have none.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	requested := r.URL.Query().Get("branche")

	if claims.Role == model.RoleAdmin && requested == "" {
		o, err := store.GetOverview(r.Context(), h.DB)
		if err != nil {
			slog.Error("failed to count overview", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to load dashboard")
			return
		}
		jsonResponse(w, http.StatusOK, o)
		return
	}

	if claims.Role != model.RoleAdmin && claims.Branch == "" && requested == "" {
		jsonResponse(w, http.StatusOK, model.BranchCounts{})
		return
	}

	branch, ok := listFilter(w, r)
	if !ok {
		return
	}
	c, err := store.CountBranch(r.Context(), h.DB, branch)
	if err != nil {
		slog.Error("failed to count branch", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	jsonResponse(w, http.StatusOK, c)
}
