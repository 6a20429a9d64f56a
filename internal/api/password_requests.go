package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/mautomotiv/inventaire/internal/model"
	"github.com/mautomotiv/inventaire/internal/store"
)

// PasswordRequestsHandler handles password-reset requests left on the login
// page.
type PasswordRequestsHandler struct {
	DB *sql.DB
}

// Create handles POST /api/password-requests. It needs no authentication.
func (h *PasswordRequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := store.CreatePasswordRequest(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "create password request")
		return
	}

	slog.Info("password request received", "id", created.ID, "name", created.Name)
	jsonResponse(w, http.StatusCreated, map[string]string{"message": "request sent to the administrator"})
}

// List handles GET /api/admin/password-requests.
func (h *PasswordRequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := store.ListPasswordRequests(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list password requests", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list password requests")
		return
	}
	if list == nil {
		list = []model.PasswordRequest{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Delete handles DELETE /api/admin/password-requests/{id}.
func (h *PasswordRequestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "password request")
	if !ok {
		return
	}

	found, err := store.DeletePasswordRequest(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to delete password request", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete password request")
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "password request not found")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("password request deleted", "user", claims.Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password request deleted"})
}

// DeleteAll handles DELETE /api/admin/password-requests.
func (h *PasswordRequestsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := store.DeleteAllPasswordRequests(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to delete password requests", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete password requests")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("password requests cleared", "user", claims.Username, "count", n)
	jsonResponse(w, http.StatusOK, map[string]int64{"deleted": n})
}
