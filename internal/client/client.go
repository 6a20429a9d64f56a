// Package client is a typed HTTP client for the inventory API. The import
// command uses it to submit normalised records one at a time.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mautomotiv/inventaire/internal/model"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// ErrNotLoggedIn is returned by calls that need a token before Login.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Client talks to one server with one bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a Client for the server at baseURL. A zero timeout means
// DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken uses an existing token instead of logging in.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	var resp struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.token = resp.Token
	return resp.User, nil
}

// Logout revokes the current token.
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.token = ""
	return nil
}

// ListBranches returns all branches.
func (c *Client) ListBranches(ctx context.Context) ([]model.Branch, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	var branches []model.Branch
	if err := c.do(ctx, http.MethodGet, "/api/branches", nil, &branches); err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	return branches, nil
}

// CreateInventoryItem creates one PC or printer.
func (c *Client) CreateInventoryItem(ctx context.Context, it model.InventoryItem) (*model.InventoryItem, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	var created model.InventoryItem
	if err := c.do(ctx, http.MethodPost, "/api/inventory-items", it, &created); err != nil {
		return nil, fmt.Errorf("creating inventory item: %w", err)
	}
	return &created, nil
}

// ListInventoryItems lists items, optionally restricted to a branch and kind.
func (c *Client) ListInventoryItems(ctx context.Context, branch string, kind model.ItemKind) ([]model.InventoryItem, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	q := url.Values{}
	if branch != "" {
		q.Set("branche", branch)
	}
	if kind != "" {
		q.Set("kind", string(kind))
	}
	var items []model.InventoryItem
	if err := c.do(ctx, http.MethodGet, "/api/inventory-items"+query(q), nil, &items); err != nil {
		return nil, fmt.Errorf("listing inventory items: %w", err)
	}
	return items, nil
}

// CreateConsumable creates one consumable. Quantities outside its toner type
// must be not applicable.
func (c *Client) CreateConsumable(ctx context.Context, cons model.Consumable) (*model.Consumable, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	var created model.Consumable
	if err := c.do(ctx, http.MethodPost, "/api/consumables", cons, &created); err != nil {
		return nil, fmt.Errorf("creating consumable: %w", err)
	}
	return &created, nil
}

// UpdateConsumable replaces consumable id.
func (c *Client) UpdateConsumable(ctx context.Context, id int64, cons model.Consumable) (*model.Consumable, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	var updated model.Consumable
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/consumables/%d", id), cons, &updated); err != nil {
		return nil, fmt.Errorf("updating consumable: %w", err)
	}
	return &updated, nil
}

// ConsumableQuery filters ListConsumables.
type ConsumableQuery struct {
	Branch string
	State  string
	Search string
}

// ListConsumables lists consumables matching q.
func (c *Client) ListConsumables(ctx context.Context, q ConsumableQuery) ([]model.Consumable, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	v := url.Values{}
	if q.Branch != "" {
		v.Set("branche", q.Branch)
	}
	if q.State != "" {
		v.Set("etat", q.State)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	var list []model.Consumable
	if err := c.do(ctx, http.MethodGet, "/api/consumables"+query(v), nil, &list); err != nil {
		return nil, fmt.Errorf("listing consumables: %w", err)
	}
	return list, nil
}

func query(v url.Values) string {
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// SubmitInventoryItem creates it and discards the result. It matches the
// importer's submitter signature.
func (c *Client) SubmitInventoryItem(ctx context.Context, it model.InventoryItem) error {
	_, err := c.CreateInventoryItem(ctx, it)
	return err
}

// SubmitConsumable creates cons and discards the result.
func (c *Client) SubmitConsumable(ctx context.Context, cons model.Consumable) error {
	_, err := c.CreateConsumable(ctx, cons)
	return err
}
