package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mautomotiv/inventaire/internal/imaging"
	"github.com/mautomotiv/inventaire/internal/model"
	"github.com/mautomotiv/inventaire/internal/store"
)

// BranchesHandler handles branch endpoints.
type BranchesHandler struct {
	DB *sql.DB
}

type branchRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// List handles GET /api/branches.
func (h *BranchesHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := store.ListBranches(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list branches", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list branches")
		return
	}
	if branches == nil {
		branches = []model.Branch{}
	}
	jsonResponse(w, http.StatusOK, branches)
}

// Create handles POST /api/branches.
func (h *BranchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	branch, err := store.CreateBranch(r.Context(), h.DB, req.Name, req.Location)
	if err != nil {
		jsonError(w, http.StatusConflict, "branch already exists")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("branch created", "user", claims.Username, "branch", branch.Name)
	jsonResponse(w, http.StatusCreated, branch)
}

// Get handles GET /api/branches/{id}.
func (h *BranchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "branch")
	if !ok {
		return
	}

	branch, err := store.GetBranch(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get branch", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get branch")
		return
	}
	if branch == nil {
		jsonError(w, http.StatusNotFound, "branch not found")
		return
	}

	jsonResponse(w, http.StatusOK, branch)
}

// Update handles PUT /api/branches/{id}. Renaming a branch moves its
// inventory, consumables and users along with it.
func (h *BranchesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "branch")
	if !ok {
		return
	}

	var req branchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	existing, err := store.GetBranch(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get branch", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update branch")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "branch not found")
		return
	}

	if err := store.UpdateBranch(r.Context(), h.DB, id, req.Name, req.Location); err != nil {
		slog.Error("failed to update branch", "error", err)
		jsonError(w, http.StatusConflict, "failed to update branch")
		return
	}

	branch, _ := store.GetBranch(r.Context(), h.DB, id)
	claims := GetClaims(r.Context())
	slog.Info("branch updated", "user", claims.Username, "branch", existing.Name, "new_name", req.Name)
	jsonResponse(w, http.StatusOK, branch)
}

// Delete handles DELETE /api/branches/{id}.
func (h *BranchesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "branch")
	if !ok {
		return
	}

	branch, err := store.GetBranch(r.Context(), h.DB, id)
	if err != nil || branch == nil {
		jsonError(w, http.StatusNotFound, "branch not found")
		return
	}

	if err := store.DeleteBranch(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrBranchInUse) {
			jsonError(w, http.StatusConflict, err.Error())
			return
		}
		slog.Error("failed to delete branch", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete branch")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("branch deleted", "user", claims.Username, "branch", branch.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "branch deleted"})
}

// UploadImage handles PUT /api/branches/{id}/image. The upload is downscaled
// and stored as JPEG.
func (h *BranchesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "branch")
	if !ok {
		return
	}

	branch, err := store.GetBranch(r.Context(), h.DB, id)
	if err != nil || branch == nil {
		jsonError(w, http.StatusNotFound, "branch not found")
		return
	}

	claims := GetClaims(r.Context())
	if !canAccess(claims, branch.Name) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUpload+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.ProcessPhoto(file)
	switch {
	case errors.Is(err, imaging.ErrUnsupported):
		jsonError(w, http.StatusBadRequest, "image must be JPEG, PNG, or WebP")
		return
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	case err != nil:
		jsonError(w, http.StatusBadRequest, "invalid image")
		return
	}

	if err := store.SetBranchImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		slog.Error("failed to save branch image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	slog.Info("branch image uploaded", "user", claims.Username, "branch", branch.Name,
		"width", photo.Width, "height", photo.Height)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/branches/{id}/image.
func (h *BranchesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "branch")
	if !ok {
		return
	}

	data, mime, err := store.GetBranchImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
