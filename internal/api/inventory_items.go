package api

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mautomotiv/inventaire/internal/model"
	"github.com/mautomotiv/inventaire/internal/sheet"
	"github.com/mautomotiv/inventaire/internal/store"
)

// InventoryItemsHandler handles PC and printer endpoints.
type InventoryItemsHandler struct {
	DB *sql.DB
}

// resolveBranch fills in the caller's branch when none is given and checks
// that the branch exists and is within reach. It writes the error response
// itself and reports whether the request may go on.
func resolveBranch(w http.ResponseWriter, r *http.Request, db *sql.DB, branch *string) bool {
	claims := GetClaims(r.Context())
	if *branch == "" && claims.Role == model.RoleResponsable {
		*branch = claims.Branch
	}
	if *branch == "" {
		jsonError(w, http.StatusBadRequest, "branch required")
		return false
	}
	if !canAccess(claims, *branch) {
		jsonError(w, http.StatusForbidden, "no access to branch "+*branch)
		return false
	}

	b, err := store.GetBranchByName(r.Context(), db, *branch)
	if err != nil {
		slog.Error("failed to get branch", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to check branch")
		return false
	}
	if b == nil {
		jsonError(w, http.StatusBadRequest, "unknown branch "+*branch)
		return false
	}
	return true
}

// listFilter reads the branche query parameter, applying branch scoping.
func listFilter(w http.ResponseWriter, r *http.Request) (string, bool) {
	branch, ok := branchFilter(GetClaims(r.Context()), r.URL.Query().Get("branche"))
	if !ok {
		jsonError(w, http.StatusForbidden, "no access to branch")
	}
	return branch, ok
}

// List handles GET /api/inventory-items?branche=&kind=.
func (h *InventoryItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	branch, ok := listFilter(w, r)
	if !ok {
		return
	}

	kind := model.ItemKind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid kind")
		return
	}

	items, err := store.ListInventoryItems(r.Context(), h.DB, store.ItemFilter{Branch: branch, Kind: kind})
	if err != nil {
		slog.Error("failed to list inventory items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list inventory items")
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/inventory-items. Every call inserts a new record;
// no attempt is made to match an existing serial number.
func (h *InventoryItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var it model.InventoryItem
	if err := decodeJSON(r, &it); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !resolveBranch(w, r, h.DB, &it.Branch) {
		return
	}

	created, err := store.CreateInventoryItem(r.Context(), h.DB, it)
	if err != nil {
		storeError(w, err, "create inventory item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("inventory item created", "user", claims.Username, "id", created.ID,
		"kind", created.Kind, "branch", created.Branch)
	jsonResponse(w, http.StatusCreated, created)
}

// fetch loads the item named by the path and checks branch access.
func (h *InventoryItemsHandler) fetch(w http.ResponseWriter, r *http.Request) (*model.InventoryItem, bool) {
	id, ok := pathID(w, r, "inventory item")
	if !ok {
		return nil, false
	}

	it, err := store.GetInventoryItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get inventory item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get inventory item")
		return nil, false
	}
	if it == nil || !canAccess(GetClaims(r.Context()), it.Branch) {
		jsonError(w, http.StatusNotFound, "inventory item not found")
		return nil, false
	}
	return it, true
}

// Get handles GET /api/inventory-items/{id}.
func (h *InventoryItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	it, ok := h.fetch(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, it)
}

// Update handles PUT /api/inventory-items/{id}.
func (h *InventoryItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.fetch(w, r)
	if !ok {
		return
	}

	var it model.InventoryItem
	if err := decodeJSON(r, &it); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if it.Kind == "" {
		it.Kind = existing.Kind
	}
	if it.Branch == "" {
		it.Branch = existing.Branch
	}
	if !resolveBranch(w, r, h.DB, &it.Branch) {
		return
	}

	updated, err := store.UpdateInventoryItem(r.Context(), h.DB, existing.ID, it)
	if err != nil {
		storeError(w, err, "update inventory item")
		return
	}
	if updated == nil {
		jsonError(w, http.StatusNotFound, "inventory item not found")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("inventory item updated", "user", claims.Username, "id", updated.ID, "branch", updated.Branch)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/inventory-items/{id}.
func (h *InventoryItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	it, ok := h.fetch(w, r)
	if !ok {
		return
	}

	if err := store.DeleteInventoryItem(r.Context(), h.DB, it.ID); err != nil {
		slog.Error("failed to delete inventory item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete inventory item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("inventory item deleted", "user", claims.Username, "id", it.ID, "kind", it.Kind, "branch", it.Branch)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "inventory item deleted"})
}

// exportColumn is one column of an inventory export. Headers are chosen so
// that an exported sheet can be imported again.
type exportColumn struct {
	header string
	value  func(model.InventoryItem) string
}

var exportColumns = map[model.ItemKind][]exportColumn{
	model.KindPC: {
		{"Nom du poste", func(it model.InventoryItem) string { return it.AssetName }},
		{"Numéro de série", func(it model.InventoryItem) string { return it.SerialNumber }},
		{"Utilisateur", func(it model.InventoryItem) string { return it.AssignedUser }},
		{"Email", func(it model.InventoryItem) string { return it.Email }},
		{"Service", func(it model.InventoryItem) string { return it.Service }},
		{"Description", func(it model.InventoryItem) string { return it.Description }},
		{"Date d'affectation", func(it model.InventoryItem) string { return it.AssignedOn }},
		{"État", func(it model.InventoryItem) string { return it.Status }},
		{"Remarque", func(it model.InventoryItem) string { return it.Remark }},
	},
	model.KindPrinter: {
		{"Emplacement", func(it model.InventoryItem) string { return it.Location }},
		{"Adresse IP", func(it model.InventoryItem) string { return it.IPAddress }},
		{"Hostname", func(it model.InventoryItem) string { return it.Hostname }},
		{"Numéro de série", func(it model.InventoryItem) string { return it.SerialNumber }},
		{"Modèle", func(it model.InventoryItem) string { return it.Model }},
	},
}

// Export handles GET /api/inventory-items/export?branche=&kind= and returns
// an xlsx workbook.
func (h *InventoryItemsHandler) Export(w http.ResponseWriter, r *http.Request) {
	branch, ok := listFilter(w, r)
	if !ok {
		return
	}

	kind := model.ItemKind(r.URL.Query().Get("kind"))
	columns, ok := exportColumns[kind]
	if !ok {
		jsonError(w, http.StatusBadRequest, "kind must be pc or printer")
		return
	}

	items, err := store.ListInventoryItems(r.Context(), h.DB, store.ItemFilter{Branch: branch, Kind: kind})
	if err != nil {
		slog.Error("failed to list inventory items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export inventory")
		return
	}

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.header
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = c.value(it)
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := sheet.WriteXLSX(&buf, string(kind), header, rows); err != nil {
		slog.Error("failed to write export", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export inventory")
		return
	}

	name := fmt.Sprintf("inventaire-%s-%s.xlsx", kind, time.Now().Format("20060102"))
	if branch != "" {
		name = fmt.Sprintf("inventaire-%s-%s-%s.xlsx", kind, branch, time.Now().Format("20060102"))
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(buf.Bytes())

	claims := GetClaims(r.Context())
	slog.Info("inventory exported", "user", claims.Username, "kind", kind, "branch", branch, "rows", len(rows))
}
