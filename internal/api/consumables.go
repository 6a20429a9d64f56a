package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mautomotiv/inventaire/internal/model"
	"github.com/mautomotiv/inventaire/internal/store"
)

// ConsumablesHandler handles toner and drum stock endpoints.
type ConsumablesHandler struct {
	DB *sql.DB
}

// consumableResponse adds the operator-facing quantities to a consumable.
type consumableResponse struct {
	model.Consumable
	Display []model.DisplayField `json:"display"`
}

func newConsumableResponse(c model.Consumable) consumableResponse {
	d := c.Display()
	if d == nil {
		d = []model.DisplayField{}
	}
	return consumableResponse{Consumable: c, Display: d}
}

// decodeConsumable reads a consumable body. Quantities other than -1 or a
// non-negative integer are rejected with their own message.
func decodeConsumable(w http.ResponseWriter, r *http.Request) (model.Consumable, bool) {
	var c model.Consumable
	if err := decodeJSON(r, &c); err != nil {
		if errors.Is(err, model.ErrInvalidQuantity) {
			jsonError(w, http.StatusBadRequest, err.Error())
		} else {
			jsonError(w, http.StatusBadRequest, "invalid request body")
		}
		return c, false
	}
	return c, true
}

// List handles GET /api/consumables?branche=&etat=&search=.
func (h *ConsumablesHandler) List(w http.ResponseWriter, r *http.Request) {
	branch, ok := listFilter(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	state := q.Get("etat")
	if state != "" && !model.ValidState(state) {
		jsonError(w, http.StatusBadRequest, "invalid etat")
		return
	}

	list, err := store.ListConsumables(r.Context(), h.DB, store.ConsumableFilter{
		Branch: branch,
		State:  state,
		Search: q.Get("search"),
	})
	if err != nil {
		slog.Error("failed to list consumables", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list consumables")
		return
	}

	out := make([]consumableResponse, 0, len(list))
	for _, c := range list {
		out = append(out, newConsumableResponse(c))
	}
	jsonResponse(w, http.StatusOK, out)
}

// Create handles POST /api/consumables. The body must already mark the
// quantities outside its toner type as -1.
func (h *ConsumablesHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeConsumable(w, r)
	if !ok {
		return
	}
	if !resolveBranch(w, r, h.DB, &c.Branch) {
		return
	}

	created, err := store.CreateConsumable(r.Context(), h.DB, c)
	if err != nil {
		storeError(w, err, "create consumable")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("consumable created", "user", claims.Username, "id", created.ID,
		"reference", created.Reference, "toner_type", created.TonerType, "branch", created.Branch)
	jsonResponse(w, http.StatusCreated, newConsumableResponse(*created))
}

func (h *ConsumablesHandler) fetch(w http.ResponseWriter, r *http.Request) (*model.Consumable, bool) {
	id, ok := pathID(w, r, "consumable")
	if !ok {
		return nil, false
	}

	c, err := store.GetConsumable(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get consumable", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get consumable")
		return nil, false
	}
	if c == nil || !canAccess(GetClaims(r.Context()), c.Branch) {
		jsonError(w, http.StatusNotFound, "consumable not found")
		return nil, false
	}
	return c, true
}

// Get handles GET /api/consumables/{id}.
func (h *ConsumablesHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.fetch(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, newConsumableResponse(*c))
}

// Update handles PUT /api/consumables/{id}. Changing the toner type
// re-marks the quantities that no longer apply.
func (h *ConsumablesHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.fetch(w, r)
	if !ok {
		return
	}

	c, ok := decodeConsumable(w, r)
	if !ok {
		return
	}
	if c.Branch == "" {
		c.Branch = existing.Branch
	}
	if !resolveBranch(w, r, h.DB, &c.Branch) {
		return
	}

	updated, err := store.UpdateConsumable(r.Context(), h.DB, existing.ID, c)
	if err != nil {
		storeError(w, err, "update consumable")
		return
	}
	if updated == nil {
		jsonError(w, http.StatusNotFound, "consumable not found")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("consumable updated", "user", claims.Username, "id", updated.ID,
		"toner_type", updated.TonerType, "previous_type", existing.TonerType, "state", updated.State)
	jsonResponse(w, http.StatusOK, newConsumableResponse(*updated))
}

// Delete handles DELETE /api/consumables/{id}.
func (h *ConsumablesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.fetch(w, r)
	if !ok {
		return
	}

	if err := store.DeleteConsumable(r.Context(), h.DB, c.ID); err != nil {
		slog.Error("failed to delete consumable", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete consumable")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("consumable deleted", "user", claims.Username, "id", c.ID, "reference", c.Reference, "branch", c.Branch)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "consumable deleted"})
}
