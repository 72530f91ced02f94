package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invogen/internal/domain"
	"invogen/internal/port"
)

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret123", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(19900), body["amount"])
		assert.Equal(t, "INR", body["currency"])

		json.NewEncoder(w).Encode(orderResponse{
			ID:       "order_ABC",
			Amount:   19900,
			Currency: "INR",
			Receipt:  "rcpt_1",
			Status:   "created",
		})
	}))
	defer srv.Close()

	c := NewClient("rzp_test_key", "secret123", "whsecret", srv.URL, time.Second)
	order, err := c.CreateOrder(context.Background(), port.CreateOrderInput{
		AmountMinor: 19900,
		Currency:    "INR",
		Receipt:     "rcpt_1",
		Notes:       map[string]string{"purpose": "credits"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_ABC", order.ID)
	assert.Equal(t, int64(19900), order.AmountMinor)
	assert.Equal(t, "created", order.Status)
}

func TestFetchPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/pay_XYZ", r.URL.Path)
		json.NewEncoder(w).Encode(paymentResponse{
			ID:       "pay_XYZ",
			OrderID:  "order_ABC",
			Amount:   19900,
			Currency: "INR",
			Status:   "captured",
		})
	}))
	defer srv.Close()

	c := NewClient("rzp_test_key", "secret123", "whsecret", srv.URL, time.Second)
	payment, err := c.FetchPayment(context.Background(), "pay_XYZ")
	require.NoError(t, err)
	assert.Equal(t, "order_ABC", payment.OrderID)
	assert.Equal(t, "captured", payment.Status)
}

func TestFetchOrder_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("rzp_test_key", "secret123", "whsecret", srv.URL, time.Second)
	_, err := c.FetchOrder(context.Background(), "order_MISSING")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestFetchPayment_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("rzp_test_key", "secret123", "whsecret", srv.URL, time.Second)
	_, err := c.FetchPayment(context.Background(), "pay_MISSING")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	assert.NotErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"code":        "BAD_REQUEST_ERROR",
				"description": "amount must be at least 100",
			},
		})
	}))
	defer srv.Close()

	c := NewClient("rzp_test_key", "secret123", "whsecret", srv.URL, time.Second)
	_, err := c.CreateOrder(context.Background(), port.CreateOrderInput{AmountMinor: 1, Currency: "INR"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}
