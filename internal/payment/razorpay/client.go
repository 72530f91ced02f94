package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"invogen/internal/domain"
	"invogen/internal/port"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// Client talks to the Razorpay REST API with basic auth. Razorpay ships
// no official Go SDK worth the dependency, so this is a thin net/http
// wrapper over the three endpoints we use.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
}

// NewClient creates a Razorpay API client. baseURL may be empty to use
// the production API; tests point it at a local server.
func NewClient(keyID, keySecret, webhookSecret, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       baseURL,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// KeyID exposes the public key for checkout payloads.
func (c *Client) KeyID() string {
	return c.keyID
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type paymentResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) CreateOrder(ctx context.Context, input port.CreateOrderInput) (*port.GatewayOrder, error) {
	body := map[string]any{
		"amount":   input.AmountMinor,
		"currency": input.Currency,
		"receipt":  input.Receipt,
	}
	if len(input.Notes) > 0 {
		body["notes"] = input.Notes
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", body, &resp, nil); err != nil {
		return nil, err
	}
	return &port.GatewayOrder{
		ID:          resp.ID,
		AmountMinor: resp.Amount,
		Currency:    resp.Currency,
		Receipt:     resp.Receipt,
		Status:      resp.Status,
	}, nil
}

func (c *Client) FetchOrder(ctx context.Context, orderID string) (*port.GatewayOrder, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &resp, domain.ErrOrderNotFound); err != nil {
		return nil, err
	}
	return &port.GatewayOrder{
		ID:          resp.ID,
		AmountMinor: resp.Amount,
		Currency:    resp.Currency,
		Receipt:     resp.Receipt,
		Status:      resp.Status,
	}, nil
}

func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*port.GatewayPayment, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &resp, domain.ErrPaymentNotFound); err != nil {
		return nil, err
	}
	return &port.GatewayPayment{
		ID:          resp.ID,
		OrderID:     resp.OrderID,
		AmountMinor: resp.Amount,
		Currency:    resp.Currency,
		Status:      resp.Status,
	}, nil
}

func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC(c.keySecret, paymentSignaturePayload(orderID, paymentID), signature)
}

func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(c.webhookSecret, body, signature)
}

// do issues a request and decodes the response. notFound is the sentinel
// returned on a 404 so each endpoint reports the missing resource it was
// actually asked for; nil lets a 404 fall through to the generic error.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, notFound error) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding razorpay request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building razorpay request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", domain.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound && notFound != nil {
		return notFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("%w: %s (%s)", domain.ErrGatewayUnavailable, apiErr.Error.Description, apiErr.Error.Code)
		}
		return fmt.Errorf("%w: unexpected status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding razorpay response: %w", err)
		}
	}
	return nil
}
