package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mautomotiv/inventaire/internal/auth"
	"github.com/mautomotiv/inventaire/internal/db"
	"github.com/mautomotiv/inventaire/internal/model"
	"github.com/mautomotiv/inventaire/internal/sheet"
	"github.com/mautomotiv/inventaire/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateUser(context.Background(), database, "admin", hash, model.RoleAdmin, ""); err != nil {
		t.Fatal(err)
	}

	return server, login(t, server, "admin", "password")
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp loginResponse
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// call sends an authenticated request, checks the status and decodes the
// response into out when it is not nil.
func call(t *testing.T, method, url, token string, body any, want int, out any) {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s", method, url, want, resp.StatusCode, data)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, url, err)
		}
	}
}

func createBranch(t *testing.T, server *httptest.Server, token, name string) model.Branch {
	t.Helper()
	var b model.Branch
	call(t, "POST", server.URL+"/api/branches", token, map[string]string{"name": name, "location": "Maroc"},
		http.StatusCreated, &b)
	return b
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	body, _ = json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var lr loginResponse
	json.NewDecoder(resp.Body).Decode(&lr)
	if lr.User == nil || lr.User.Username != "admin" || lr.User.Role != model.RoleAdmin {
		t.Errorf("unexpected login user %+v", lr.User)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	call(t, "GET", server.URL+"/api/auth/me", token, nil, http.StatusOK, nil)
	call(t, "POST", server.URL+"/api/auth/logout", token, nil, http.StatusOK, nil)
	call(t, "GET", server.URL+"/api/auth/me", token, nil, http.StatusUnauthorized, nil)

	// A fresh login still works.
	fresh := login(t, server, "admin", "password")
	call(t, "GET", server.URL+"/api/auth/me", fresh, nil, http.StatusOK, nil)
}

func TestChangePassword(t *testing.T) {
	server, token := setupTestServer(t)

	call(t, "PUT", server.URL+"/api/auth/password", token,
		map[string]string{"current_password": "password", "new_password": "short"}, http.StatusBadRequest, nil)
	call(t, "PUT", server.URL+"/api/auth/password", token,
		map[string]string{"current_password": "wrong-one", "new_password": "long-enough"}, http.StatusUnauthorized, nil)
	call(t, "PUT", server.URL+"/api/auth/password", token,
		map[string]string{"current_password": "password", "new_password": "long-enough"}, http.StatusOK, nil)

	login(t, server, "admin", "long-enough")
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	for _, path := range []string{"/api/users", "/api/branches", "/api/inventory-items", "/api/consumables"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s: expected 401, got %d", path, resp.StatusCode)
		}
	}

	req, _ := authRequest("GET", server.URL+"/api/branches", "not-a-token", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("GET", server.URL+"/api/branches", token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected a generated request ID")
	}

	req, _ = authRequest("GET", server.URL+"/api/branches", token, nil)
	req.Header.Set(RequestIDHeader, "import-42")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "import-42" {
		t.Errorf("expected caller's request ID, got %q", got)
	}
}

func TestUsersAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)
	createBranch(t, server, token, "Casablanca")

	call(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "karim", "password": "password1", "role": model.RoleResponsable,
	}, http.StatusBadRequest, nil)
	call(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "karim", "password": "password1", "role": model.RoleResponsable, "branch": "Rabat",
	}, http.StatusBadRequest, nil)
	call(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "karim", "password": "password1", "role": "manager", "branch": "Casablanca",
	}, http.StatusBadRequest, nil)

	var u model.User
	call(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "karim", "password": "password1", "role": model.RoleResponsable, "branch": "Casablanca",
	}, http.StatusCreated, &u)
	if u.Branch != "Casablanca" || u.Role != model.RoleResponsable {
		t.Errorf("unexpected user %+v", u)
	}

	call(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "karim", "password": "password1", "role": model.RoleResponsable, "branch": "Casablanca",
	}, http.StatusConflict, nil)

	call(t, "PUT", fmt.Sprintf("%s/api/users/%d/password", server.URL, u.ID), token,
		map[string]string{"password": "password2"}, http.StatusOK, nil)
	login(t, server, "karim", "password2")

	call(t, "DELETE", fmt.Sprintf("%s/api/users/%d", server.URL, u.ID), token, nil, http.StatusOK, nil)
	var users []model.User
	call(t, "GET", server.URL+"/api/users", token, nil, http.StatusOK, &users)
	if len(users) != 1 {
		t.Errorf("expected 1 active user, got %d", len(users))
	}
}

func TestBranchesAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	b := createBranch(t, server, token, "Casablanca")
	call(t, "POST", server.URL+"/api/branches", token, map[string]string{"name": "Casablanca"},
		http.StatusConflict, nil)

	call(t, "POST", server.URL+"/api/inventory-items", token, map[string]string{
		"kind": "pc", "asset_name": "PC-1", "branch": "Casablanca",
	}, http.StatusCreated, nil)

	// Renaming moves the inventory along.
	call(t, "PUT", fmt.Sprintf("%s/api/branches/%d", server.URL, b.ID), token,
		map[string]string{"name": "Casa Nord"}, http.StatusOK, nil)
	var items []model.InventoryItem
	call(t, "GET", server.URL+"/api/inventory-items?branche=Casa+Nord", token, nil, http.StatusOK, &items)
	if len(items) != 1 {
		t.Fatalf("expected item to follow the rename, got %d items", len(items))
	}

	call(t, "DELETE", fmt.Sprintf("%s/api/branches/%d", server.URL, b.ID), token, nil, http.StatusConflict, nil)
	call(t, "DELETE", fmt.Sprintf("%s/api/inventory-items/%d", server.URL, items[0].ID), token, nil, http.StatusOK, nil)
	call(t, "DELETE", fmt.Sprintf("%s/api/branches/%d", server.URL, b.ID), token, nil, http.StatusOK, nil)
	call(t, "GET", fmt.Sprintf("%s/api/branches/%d", server.URL, b.ID), token, nil, http.StatusNotFound, nil)
}

func TestBranchImage(t *testing.T) {
	server, token := setupTestServer(t)
	b := createBranch(t, server, token, "Casablanca")
	url := fmt.Sprintf("%s/api/branches/%d/image", server.URL, b.ID)

	call(t, "GET", url, token, nil, http.StatusNotFound, nil)

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := range 40 {
		img.Set(x, 10, color.RGBA{R: 200, A: 255})
	}
	var pngData bytes.Buffer
	png.Encode(&pngData, img)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("image", "site.png")
	fw.Write(pngData.Bytes())
	mw.Close()

	req, _ := http.NewRequest("PUT", url, &body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d", resp.StatusCode)
	}

	req, _ = authRequest("GET", url, token, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected stored JPEG, got %q", ct)
	}
}

func TestInventoryItemsAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)
	createBranch(t, server, token, "Casablanca")

	call(t, "POST", server.URL+"/api/inventory-items", token, map[string]string{
		"kind": "pc", "asset_name": "PC-1", "branch": "Rabat",
	}, http.StatusBadRequest, nil)
	call(t, "POST", server.URL+"/api/inventory-items", token, map[string]string{
		"kind": "printer", "location": "Accueil", "branch": "Casablanca",
	}, http.StatusBadRequest, nil)
	call(t, "POST", server.URL+"/api/inventory-items", token, map[string]string{
		"kind": "scanner", "branch": "Casablanca",
	}, http.StatusBadRequest, nil)

	// The same serial twice gives two records.
	pc := map[string]string{"kind": "pc", "asset_name": "PC-1", "serial_number": "SN1", "branch": "Casablanca"}
	var first, second model.InventoryItem
	call(t, "POST", server.URL+"/api/inventory-items", token, pc, http.StatusCreated, &first)
	call(t, "POST", server.URL+"/api/inventory-items", token, pc, http.StatusCreated, &second)
	if first.ID == second.ID {
		t.Error("expected a second record for a repeated serial")
	}

	call(t, "POST", server.URL+"/api/inventory-items", token, map[string]string{
		"kind": "printer", "ip_address": "10.0.0.5", "location": "Accueil", "branch": "Casablanca",
	}, http.StatusCreated, nil)

	var pcs []model.InventoryItem
	call(t, "GET", server.URL+"/api/inventory-items?kind=pc", token, nil, http.StatusOK, &pcs)
	if len(pcs) != 2 {
		t.Errorf("expected 2 pcs, got %d", len(pcs))
	}
	call(t, "GET", server.URL+"/api/inventory-items?kind=scanner", token, nil, http.StatusBadRequest, nil)

	itemURL := fmt.Sprintf("%s/api/inventory-items/%d", server.URL, first.ID)
	var updated model.InventoryItem
	call(t, "PUT", itemURL, token, map[string]string{
		"asset_name": "PC-1", "assigned_user": "Nadia", "assigned_on": "2024-03-15",
	}, http.StatusOK, &updated)
	if updated.AssignedUser != "Nadia" || updated.Kind != model.KindPC || updated.Branch != "Casablanca" {
		t.Errorf("unexpected update result %+v", updated)
	}
	call(t, "PUT", itemURL, token, map[string]string{
		"asset_name": "PC-1", "assigned_on": "15/03/2024",
	}, http.StatusBadRequest, nil)

	call(t, "DELETE", itemURL, token, nil, http.StatusOK, nil)
	call(t, "GET", itemURL, token, nil, http.StatusNotFound, nil)
	call(t, "GET", server.URL+"/api/inventory-items/abc", token, nil, http.StatusBadRequest, nil)
}

func TestInventoryExport(t *testing.T) {
	server, token := setupTestServer(t)
	createBranch(t, server, token, "Casablanca")

	call(t, "POST", server.URL+"/api/inventory-items", token, map[string]string{
		"kind": "pc", "asset_name": "PC-7", "serial_number": "00123", "email": "a@b.ma", "branch": "Casablanca",
	}, http.StatusCreated, nil)

	call(t, "GET", server.URL+"/api/inventory-items/export", token, nil, http.StatusBadRequest, nil)

	req, _ := authRequest("GET", server.URL+"/api/inventory-items/export?kind=pc&branche=Casablanca", token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	rows, err := sheet.Read(resp.Body, "export.xlsx")
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	m := sheet.InferColumns(sheet.FirstRow(rows), sheet.PCSchema)
	if !m.HasHeader {
		t.Fatal("expected export header to be recognised")
	}
	records := sheet.DataRows(rows, m)
	if len(records) != 1 {
		t.Fatalf("expected 1 exported row, got %d", len(records))
	}
	if got := m.Text(records[0].Cells, sheet.FieldAssetName); got != "PC-7" {
		t.Errorf("asset name = %q", got)
	}
	if got := m.Text(records[0].Cells, sheet.FieldSerialNumber); got != "00123" {
		t.Errorf("serial number = %q", got)
	}
}

func unicolorBody(branch string, black int) map[string]any {
	return map[string]any{
		"brand": "HP", "reference": "CF410A", "toner_type": "unicolor",
		"black": black, "cyan": -1, "magenta": -1, "yellow": -1, "color_black": -1, "drum": -1,
		"branch": branch,
	}
}

func TestConsumablesSentinel(t *testing.T) {
	server, token := setupTestServer(t)
	createBranch(t, server, token, "Casablanca")

	var created consumableResponse
	call(t, "POST", server.URL+"/api/consumables", token, unicolorBody("Casablanca", 3), http.StatusCreated, &created)
	if created.Cyan.IsApplicable() || created.Black.Or(-5) != 3 {
		t.Errorf("unexpected quantities %+v", created.Consumable)
	}
	if len(created.Display) != 1 || created.Display[0].Quantity != 3 {
		t.Errorf("display should only show black toner, got %+v", created.Display)
	}

	// -1 is stored and returned verbatim.
	req, _ := authRequest("GET", fmt.Sprintf("%s/api/consumables/%d", server.URL, created.ID), token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	json.NewDecoder(resp.Body).Decode(&raw)
	resp.Body.Close()
	if raw["cyan"] != float64(-1) || raw["black"] != float64(3) {
		t.Errorf("wire encoding: cyan=%v black=%v", raw["cyan"], raw["black"])
	}

	bad := unicolorBody("Casablanca", 3)
	bad["cyan"] = 2
	call(t, "POST", server.URL+"/api/consumables", token, bad, http.StatusBadRequest, nil)

	bad = unicolorBody("Casablanca", 3)
	bad["black"] = -2
	call(t, "POST", server.URL+"/api/consumables", token, bad, http.StatusBadRequest, nil)

	bad = unicolorBody("Casablanca", 3)
	bad["black"] = 1.5
	call(t, "POST", server.URL+"/api/consumables", token, bad, http.StatusBadRequest, nil)

	// Switching type re-marks the quantities.
	change := unicolorBody("Casablanca", 3)
	change["toner_type"] = "multicolor"
	var updated consumableResponse
	call(t, "PUT", fmt.Sprintf("%s/api/consumables/%d", server.URL, created.ID), token, change, http.StatusOK, &updated)
	if updated.Black.IsApplicable() {
		t.Error("black should not apply to a multicolor toner")
	}
	for name, q := range map[string]model.Quantity{
		"cyan": updated.Cyan, "magenta": updated.Magenta, "yellow": updated.Yellow, "color_black": updated.ColorBlack,
	} {
		if n, ok := q.Get(); !ok || n != 0 {
			t.Errorf("%s = %v, want 0", name, q)
		}
	}
}

func TestConsumablesListFilters(t *testing.T) {
	server, token := setupTestServer(t)
	createBranch(t, server, token, "Casablanca")
	createBranch(t, server, token, "Rabat")

	call(t, "POST", server.URL+"/api/consumables", token, unicolorBody("Casablanca", 1), http.StatusCreated, nil)
	other := unicolorBody("Rabat", 0)
	other["reference"] = "TN-2420"
	other["brand"] = "Brother"
	other["state"] = model.StateOnOrder
	call(t, "POST", server.URL+"/api/consumables", token, other, http.StatusCreated, nil)

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?branche=Rabat", 1},
		{"?etat=endemande", 1},
		{"?search=cf410", 1},
		{"?search=brother&branche=Casablanca", 0},
	}
	for _, tt := range tests {
		var list []consumableResponse
		call(t, "GET", server.URL+"/api/consumables"+tt.query, token, nil, http.StatusOK, &list)
		if len(list) != tt.want {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.want, len(list))
		}
	}

	call(t, "GET", server.URL+"/api/consumables?etat=vide", token, nil, http.StatusBadRequest, nil)
}

func TestRoleBasedAccess(t *testing.T) {
	server, adminToken := setupTestServer(t)
	createBranch(t, server, adminToken, "Casablanca")
	createBranch(t, server, adminToken, "Rabat")

	call(t, "POST", server.URL+"/api/users", adminToken, map[string]string{
		"username": "karim", "password": "password1", "role": model.RoleResponsable, "branch": "Casablanca",
	}, http.StatusCreated, nil)
	token := login(t, server, "karim", "password1")

	var rabatItem model.InventoryItem
	call(t, "POST", server.URL+"/api/inventory-items", adminToken, map[string]string{
		"kind": "pc", "asset_name": "PC-R", "branch": "Rabat",
	}, http.StatusCreated, &rabatItem)

	// Own branch is filled in.
	var own model.InventoryItem
	call(t, "POST", server.URL+"/api/inventory-items", token, map[string]string{
		"kind": "pc", "asset_name": "PC-C",
	}, http.StatusCreated, &own)
	if own.Branch != "Casablanca" {
		t.Errorf("expected home branch, got %q", own.Branch)
	}

	call(t, "POST", server.URL+"/api/inventory-items", token, map[string]string{
		"kind": "pc", "asset_name": "PC-X", "branch": "Rabat",
	}, http.StatusForbidden, nil)

	var items []model.InventoryItem
	call(t, "GET", server.URL+"/api/inventory-items", token, nil, http.StatusOK, &items)
	if len(items) != 1 || items[0].Branch != "Casablanca" {
		t.Errorf("responsable should only see own branch, got %+v", items)
	}
	call(t, "GET", server.URL+"/api/inventory-items?branche=Rabat", token, nil, http.StatusForbidden, nil)
	call(t, "GET", fmt.Sprintf("%s/api/inventory-items/%d", server.URL, rabatItem.ID), token, nil, http.StatusNotFound, nil)

	call(t, "GET", server.URL+"/api/users", token, nil, http.StatusForbidden, nil)
	call(t, "POST", server.URL+"/api/branches", token, map[string]string{"name": "Fes"}, http.StatusForbidden, nil)
	call(t, "GET", server.URL+"/api/branches", token, nil, http.StatusOK, nil)
}

func TestPasswordRequestsFlow(t *testing.T) {
	server, token := setupTestServer(t)
	url := server.URL + "/api/admin/password-requests"

	for _, name := range []string{"Karim", "Salma", "Youssef"} {
		call(t, "POST", server.URL+"/api/password-requests", "", map[string]string{
			"name": name, "email": "support@mautomotiv.ma", "message": "mot de passe oublié",
		}, http.StatusCreated, nil)
	}
	call(t, "POST", server.URL+"/api/password-requests", "", map[string]string{
		"name": "Karim", "email": "support@mautomotiv.ma", "message": "aide",
	}, http.StatusBadRequest, nil)

	// The list is for administrators only.
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	var list []model.PasswordRequest
	call(t, "GET", url, token, nil, http.StatusOK, &list)
	if len(list) != 3 || list[0].Name != "Youssef" {
		t.Fatalf("expected 3 requests, newest first, got %+v", list)
	}

	call(t, "DELETE", fmt.Sprintf("%s/%d", url, list[0].ID), token, nil, http.StatusOK, nil)
	call(t, "DELETE", fmt.Sprintf("%s/%d", url, list[0].ID), token, nil, http.StatusNotFound, nil)

	var cleared map[string]int64
	call(t, "DELETE", url, token, nil, http.StatusOK, &cleared)
	if cleared["deleted"] != 2 {
		t.Errorf("expected 2 deleted, got %v", cleared)
	}
	call(t, "GET", url, token, nil, http.StatusOK, &list)
	if len(list) != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
}

func TestNewPCsFlow(t *testing.T) {
	server, token := setupTestServer(t)
	createBranch(t, server, token, "Casablanca")
	call(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "karim", "password": "password1", "role": model.RoleResponsable, "branch": "Casablanca",
	}, http.StatusCreated, nil)
	userToken := login(t, server, "karim", "password1")

	body := map[string]any{
		"marque": "Dell", "modele": "Latitude 5440", "quantite_arrivee": 12,
		"fournisseur": "Disway", "disponibilite": model.ArrivalPending,
	}
	var created model.NewPC
	call(t, "POST", server.URL+"/api/new-pcs", token, body, http.StatusCreated, &created)
	if created.AdminName != "admin" || created.ArrivalDate == "" {
		t.Errorf("expected caller and today filled in, got %+v", created)
	}

	call(t, "POST", server.URL+"/api/new-pcs", userToken, body, http.StatusForbidden, nil)
	call(t, "POST", server.URL+"/api/new-pcs", token, map[string]any{
		"marque": "Dell", "modele": "Latitude", "quantite_arrivee": 0, "disponibilite": model.ArrivalPending,
	}, http.StatusBadRequest, nil)

	item := fmt.Sprintf("%s/api/new-pcs/%d", server.URL, created.ID)
	body["disponibilite"] = model.ArrivalAvailable
	body["date_arrivage"] = "2025-05-12"
	var updated model.NewPC
	call(t, "PUT", item, token, body, http.StatusOK, &updated)
	if updated.Availability != model.ArrivalAvailable || updated.ArrivalDate != "2025-05-12" {
		t.Errorf("unexpected update %+v", updated)
	}

	var list []model.NewPC
	call(t, "GET", server.URL+"/api/new-pcs?disponibilite=disponible", userToken, nil, http.StatusOK, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("responsable should see available deliveries, got %+v", list)
	}
	call(t, "GET", server.URL+"/api/new-pcs?disponibilite=bientot", token, nil, http.StatusBadRequest, nil)

	call(t, "DELETE", item, userToken, nil, http.StatusForbidden, nil)
	call(t, "DELETE", item, token, nil, http.StatusOK, nil)
	call(t, "GET", item, token, nil, http.StatusNotFound, nil)
}

func TestDashboard(t *testing.T) {
	server, token := setupTestServer(t)
	createBranch(t, server, token, "Casablanca")
	createBranch(t, server, token, "Rabat")
	call(t, "POST", server.URL+"/api/users", token, map[string]string{
		"username": "karim", "password": "password1", "role": model.RoleResponsable, "branch": "Casablanca",
	}, http.StatusCreated, nil)
	userToken := login(t, server, "karim", "password1")

	for _, it := range []map[string]string{
		{"kind": "pc", "asset_name": "PC-C1", "branch": "Casablanca"},
		{"kind": "pc", "asset_name": "PC-C2", "branch": "Casablanca"},
		{"kind": "printer", "location": "Accueil", "ip_address": "10.0.0.20", "branch": "Casablanca"},
		{"kind": "pc", "asset_name": "PC-R1", "branch": "Rabat"},
	} {
		call(t, "POST", server.URL+"/api/inventory-items", token, it, http.StatusCreated, nil)
	}
	call(t, "POST", server.URL+"/api/consumables", token, unicolorBody("Casablanca", 2), http.StatusCreated, nil)

	var overview model.Overview
	call(t, "GET", server.URL+"/api/dashboard", token, nil, http.StatusOK, &overview)
	if overview.Users != 2 || overview.Branches != 2 || overview.PCs != 3 {
		t.Errorf("unexpected totals %+v", overview)
	}
	if len(overview.PerBranch) != 2 || overview.PerBranch[0].Branch != "Casablanca" || overview.PerBranch[0].Printers != 1 {
		t.Errorf("unexpected per-branch counts %+v", overview.PerBranch)
	}

	var own model.BranchCounts
	call(t, "GET", server.URL+"/api/dashboard", userToken, nil, http.StatusOK, &own)
	want := model.BranchCounts{Branch: "Casablanca", PCs: 2, Printers: 1, Consumables: 1}
	if own != want {
		t.Errorf("responsable dashboard = %+v, want %+v", own, want)
	}

	var rabat model.BranchCounts
	call(t, "GET", server.URL+"/api/dashboard?branche=Rabat", token, nil, http.StatusOK, &rabat)
	if rabat.PCs != 1 || rabat.Printers != 0 {
		t.Errorf("unexpected Rabat counts %+v", rabat)
	}
	call(t, "GET", server.URL+"/api/dashboard?branche=Rabat", userToken, nil, http.StatusForbidden, nil)
}
