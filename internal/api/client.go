// Package api is the HTTP client for the marketplace backend.
// Every endpoint answers with the same envelope:
//
//	{ "success": bool, "message": string, "data": ... }
//
// A transport failure and a success=false answer are surfaced as
// different error kinds so callers can tell credentials problems from
// connectivity problems.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/studyshelf/studyshelf/internal/model"
)

// Error is a backend-reported failure (success=false envelope).
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// envelope is the common response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// AuthData is the payload of a successful login or registration.
type AuthData struct {
	Token string            `json:"token"`
	User  model.UserProfile `json:"user"`
}

// OrderData is the payload of a successful order creation.
type OrderData struct {
	OrderID string `json:"orderId"`
}

// Client talks to the marketplace API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do issues a request and decodes the envelope. A non-nil *Error means
// the backend answered but rejected the call.
func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed (%d)", resp.StatusCode)
		}
		return &Error{Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("invalid response data: %w", err)
		}
	}
	return nil
}

// Login authenticates with a phone number or email plus password.
func (c *Client) Login(ctx context.Context, identifier, password string) (*AuthData, error) {
	body := map[string]string{"password": password}
	if strings.Contains(identifier, "@") {
		body["email"] = identifier
	} else {
		body["phone"] = identifier
	}

	var data AuthData
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, profile model.UserProfile, password string) (*AuthData, error) {
	body := struct {
		model.UserProfile
		Password string `json:"password"`
	}{profile, password}

	var data AuthData
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Me revalidates a token and fetches the current profile
func (c *Client) Me(ctx context.Context, token string) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile replaces the profile on the backend
func (c *Client) UpdateProfile(ctx context.Context, token string, profile model.UserProfile) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := c.do(ctx, http.MethodPut, "/auth/update", token, profile, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ContentFilters narrows a catalog query.
type ContentFilters struct {
	Type    string
	ClassID string
	Board   string
	Subject string
	Search  string
}

// Content fetches catalog items matching the filters
func (c *Client) Content(ctx context.Context, f ContentFilters) ([]model.ContentItem, error) {
	params := url.Values{}
	if f.Type != "" {
		params.Set("type", f.Type)
	}
	if f.ClassID != "" {
		params.Set("classId", f.ClassID)
	}
	if f.Board != "" {
		params.Set("board", f.Board)
	}
	if f.Subject != "" {
		params.Set("subject", f.Subject)
	}
	if f.Search != "" {
		params.Set("search", f.Search)
	}

	path := "/content"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var items []model.ContentItem
	if err := c.do(ctx, http.MethodGet, path, "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ContentByID fetches a single catalog item
func (c *Client) ContentByID(ctx context.Context, id string) (*model.ContentItem, error) {
	var item model.ContentItem
	if err := c.do(ctx, http.MethodGet, "/content/"+url.PathEscape(id), "", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PDFs fetches PDF materials for a class/board
func (c *Client) PDFs(ctx context.Context, classID, board string) ([]model.ContentItem, error) {
	return c.Content(ctx, ContentFilters{Type: model.TypePDF, ClassID: classID, Board: board})
}

// Videos fetches video courses for a class/board
func (c *Client) Videos(ctx context.Context, classID, board string) ([]model.ContentItem, error) {
	return c.Content(ctx, ContentFilters{Type: model.TypeVideo, ClassID: classID, Board: board})
}

// Pricing fetches the class package plans
func (c *Client) Pricing(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	if err := c.do(ctx, http.MethodGet, "/pricing", "", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// OrderRequest is the payload for creating an order.
type OrderRequest struct {
	OrderType     string            `json:"orderType"` // digital or hardcopy
	Items         []model.OrderItem `json:"items"`
	ClassID       string            `json:"classId,omitempty"`
	PackageType   string            `json:"packageType,omitempty"`
	Amount        int               `json:"amount"`
	PaymentMethod string            `json:"paymentMethod"`
	PaymentStatus string            `json:"paymentStatus"`
	OrderStatus   string            `json:"orderStatus"`
	Address       *model.Address    `json:"address,omitempty"`
}

// CreateOrder submits an order and returns the assigned order id
func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) (string, error) {
	var data OrderData
	if err := c.do(ctx, http.MethodPost, "/orders", token, req, &data); err != nil {
		return "", err
	}
	return data.OrderID, nil
}

// Orders fetches the user's order ledger
func (c *Client) Orders(ctx context.Context, token string) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Notifications fetches the user's notifications
func (c *Client) Notifications(ctx context.Context, token string) ([]model.Notification, error) {
	var notes []model.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", token, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}
