package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/mautomotiv/inventaire/internal/model"
	"github.com/mautomotiv/inventaire/internal/store"
)

// NewPCsHandler handles deliveries of new PCs waiting at headquarters.
type NewPCsHandler struct {
	DB *sql.DB
}

// List handles GET /api/new-pcs?disponibilite=.
func (h *NewPCsHandler) List(w http.ResponseWriter, r *http.Request) {
	availability := r.URL.Query().Get("disponibilite")
	if availability != "" && !model.ValidAvailability(availability) {
		jsonError(w, http.StatusBadRequest, "invalid disponibilite")
		return
	}

	list, err := store.ListNewPCs(r.Context(), h.DB, availability)
	if err != nil {
		slog.Error("failed to list new pcs", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list new pcs")
		return
	}
	if list == nil {
		list = []model.NewPC{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Create handles POST /api/new-pcs. The caller is recorded as the receiving
// administrator unless the body names one.
func (h *NewPCsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewPC
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if req.AdminName == "" {
		req.AdminName = claims.Username
	}

	created, err := store.CreateNewPC(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "create new pc")
		return
	}

	slog.Info("new pcs recorded", "user", claims.Username, "id", created.ID,
		"model", created.Brand+" "+created.Model, "quantity", created.Quantity)
	jsonResponse(w, http.StatusCreated, created)
}

func (h *NewPCsHandler) fetch(w http.ResponseWriter, r *http.Request) (*model.NewPC, bool) {
	id, ok := pathID(w, r, "new pc")
	if !ok {
		return nil, false
	}

	n, err := store.GetNewPC(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get new pc", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get new pc")
		return nil, false
	}
	if n == nil {
		jsonError(w, http.StatusNotFound, "new pc not found")
		return nil, false
	}
	return n, true
}

// Get handles GET /api/new-pcs/{id}.
func (h *NewPCsHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, ok := h.fetch(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, n)
}

// Update handles PUT /api/new-pcs/{id}.
func (h *NewPCsHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.fetch(w, r)
	if !ok {
		return
	}

	var req model.NewPC
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := store.UpdateNewPC(r.Context(), h.DB, existing.ID, req)
	if err != nil {
		storeError(w, err, "update new pc")
		return
	}
	if updated == nil {
		jsonError(w, http.StatusNotFound, "new pc not found")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("new pcs updated", "user", claims.Username, "id", updated.ID,
		"availability", updated.Availability)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/new-pcs/{id}.
func (h *NewPCsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.fetch(w, r)
	if !ok {
		return
	}

	if err := store.DeleteNewPC(r.Context(), h.DB, existing.ID); err != nil {
		slog.Error("failed to delete new pc", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete new pc")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("new pcs deleted", "user", claims.Username, "id", existing.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "new pc deleted"})
}
