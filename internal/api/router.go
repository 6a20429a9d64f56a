package api

import (
	"database/sql"
	"net/http"

	"github.com/mautomotiv/inventaire/internal/model"
)

// NewRouter creates the API router with all endpoints registered. Every
// request gets an ID and is logged.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	branchesHandler := &BranchesHandler{DB: db}
	itemsHandler := &InventoryItemsHandler{DB: db}
	consumablesHandler := &ConsumablesHandler{DB: db}
	requestsHandler := &PasswordRequestsHandler{DB: db}
	newPCsHandler := &NewPCsHandler{DB: db}
	dashboardHandler := &DashboardHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireResponsable := RequireRole(model.RoleResponsable)

	// Public: login and password-reset requests.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/password-requests", requestsHandler.Create)

	// Authenticated routes.
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Branches: read (all roles), write (admin). A responsable may set the
	// photo of their own branch.
	mux.Handle("GET /api/branches", authMW(http.HandlerFunc(branchesHandler.List)))
	mux.Handle("POST /api/branches", authMW(requireAdmin(http.HandlerFunc(branchesHandler.Create))))
	mux.Handle("GET /api/branches/{id}", authMW(http.HandlerFunc(branchesHandler.Get)))
	mux.Handle("PUT /api/branches/{id}", authMW(requireAdmin(http.HandlerFunc(branchesHandler.Update))))
	mux.Handle("DELETE /api/branches/{id}", authMW(requireAdmin(http.HandlerFunc(branchesHandler.Delete))))
	mux.Handle("PUT /api/branches/{id}/image", authMW(requireResponsable(http.HandlerFunc(branchesHandler.UploadImage))))
	mux.Handle("GET /api/branches/{id}/image", authMW(http.HandlerFunc(branchesHandler.GetImage)))

	// Inventory items and consumables: scoped to the caller's branch unless admin.
	mux.Handle("GET /api/inventory-items", authMW(requireResponsable(http.HandlerFunc(itemsHandler.List))))
	mux.Handle("POST /api/inventory-items", authMW(requireResponsable(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/inventory-items/export", authMW(requireResponsable(http.HandlerFunc(itemsHandler.Export))))
	mux.Handle("GET /api/inventory-items/{id}", authMW(requireResponsable(http.HandlerFunc(itemsHandler.Get))))
	mux.Handle("PUT /api/inventory-items/{id}", authMW(requireResponsable(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/inventory-items/{id}", authMW(requireResponsable(http.HandlerFunc(itemsHandler.Delete))))

	mux.Handle("GET /api/consumables", authMW(requireResponsable(http.HandlerFunc(consumablesHandler.List))))
	mux.Handle("POST /api/consumables", authMW(requireResponsable(http.HandlerFunc(consumablesHandler.Create))))
	mux.Handle("GET /api/consumables/{id}", authMW(requireResponsable(http.HandlerFunc(consumablesHandler.Get))))
	mux.Handle("PUT /api/consumables/{id}", authMW(requireResponsable(http.HandlerFunc(consumablesHandler.Update))))
	mux.Handle("DELETE /api/consumables/{id}", authMW(requireResponsable(http.HandlerFunc(consumablesHandler.Delete))))

	// Password-reset requests (admin only).
	mux.Handle("GET /api/admin/password-requests", authMW(requireAdmin(http.HandlerFunc(requestsHandler.List))))
	mux.Handle("DELETE /api/admin/password-requests", authMW(requireAdmin(http.HandlerFunc(requestsHandler.DeleteAll))))
	mux.Handle("DELETE /api/admin/password-requests/{id}", authMW(requireAdmin(http.HandlerFunc(requestsHandler.Delete))))

	// New PC deliveries: read (all roles), write (admin).
	mux.Handle("GET /api/new-pcs", authMW(http.HandlerFunc(newPCsHandler.List)))
	mux.Handle("POST /api/new-pcs", authMW(requireAdmin(http.HandlerFunc(newPCsHandler.Create))))
	mux.Handle("GET /api/new-pcs/{id}", authMW(http.HandlerFunc(newPCsHandler.Get)))
	mux.Handle("PUT /api/new-pcs/{id}", authMW(requireAdmin(http.HandlerFunc(newPCsHandler.Update))))
	mux.Handle("DELETE /api/new-pcs/{id}", authMW(requireAdmin(http.HandlerFunc(newPCsHandler.Delete))))

	mux.Handle("GET /api/dashboard", authMW(requireResponsable(http.HandlerFunc(dashboardHandler.Get))))

	return RequestIDMiddleware(LoggingMiddleware(mux))
}
