package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyshelf/studyshelf/internal/model"
)

func respond(t *testing.T, w http.ResponseWriter, status int, env envelope) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(env))
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestLoginSendsPhoneOrEmail(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		got = map[string]string{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(t, w, http.StatusOK, envelope{Success: true, Data: raw(t, AuthData{
			Token: "tok-1",
			User:  model.UserProfile{ID: "u-1", Phone: "9876543210"},
		})})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	data, err := c.Login(context.Background(), "9876543210", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", data.Token)
	assert.Equal(t, "9876543210", got["phone"])
	assert.NotContains(t, got, "email")

	_, err = c.Login(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", got["email"])
	assert.NotContains(t, got, "phone")
}

func TestBackendRejectionIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusUnauthorized, envelope{Success: false, Message: "Invalid credentials"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Login(context.Background(), "9876543210", "wrong")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL)
	_, err := c.Me(context.Background(), "tok-1")

	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr), "connection failure must not look like a rejection")
}

func TestRejectionWithoutMessageGetsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusInternalServerError, envelope{Success: false})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Pricing(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request failed (500)", apiErr.Message)
}

func TestContentFiltersBecomeQueryParams(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		respond(t, w, http.StatusOK, envelope{Success: true, Data: raw(t, []model.ContentItem{
			{ID: "pdf-1", Title: "Notes", Type: "pdf", ClassID: "class10"},
		})})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	items, err := c.Content(context.Background(), ContentFilters{
		Type: "pdf", ClassID: "class10", Board: "state", Search: "notes",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "pdf-1", items[0].ID)

	assert.Equal(t, []string{"pdf"}, gotQuery["type"])
	assert.Equal(t, []string{"class10"}, gotQuery["classId"])
	assert.Equal(t, []string{"state"}, gotQuery["board"])
	assert.Equal(t, []string{"notes"}, gotQuery["search"])
}

func TestCreateOrderSendsBearerToken(t *testing.T) {
	var gotAuth string
	var gotReq OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		respond(t, w, http.StatusOK, envelope{Success: true, Data: raw(t, OrderData{OrderID: "o-99"})})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	orderID, err := c.CreateOrder(context.Background(), "tok-1", OrderRequest{
		OrderType:     "digital",
		Items:         []model.OrderItem{{ID: "pdf-1", Name: "Notes", Price: 199}},
		Amount:        199,
		PaymentMethod: "demo",
		PaymentStatus: "completed",
		OrderStatus:   "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, "o-99", orderID)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "demo", gotReq.PaymentMethod)
}

func TestOrdersDecodesLedger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusOK, envelope{Success: true, Data: raw(t, []model.Order{
			{ID: "o-1", OrderType: "digital", PaymentStatus: "completed", OrderStatus: "completed"},
			{ID: "o-2", OrderType: "hardcopy", PaymentStatus: "pending", OrderStatus: "pending"},
		})})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	orders, err := c.Orders(context.Background(), "tok-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, orders[0].Completed())
	assert.False(t, orders[1].Completed())
}
