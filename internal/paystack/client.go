// Package paystack is a minimal client for the Paystack transaction API:
// hosted checkout initialization, transaction verification, and the webhook
// event envelope Paystack pushes back at us.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.paystack.co"

// Metadata travels with a transaction through initialize, verify and the
// webhook, letting us correlate the payment back to a phone number.
type Metadata struct {
	Phone     string `json:"phone,omitempty"`
	IsUpgrade bool   `json:"is_upgrade,omitempty"`
}

// InitializeRequest is the payload for POST /transaction/initialize.
// Amount is in minor currency units (kobo).
type InitializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    Metadata `json:"metadata"`
}

// InitializeData is the useful part of the initialize response.
type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyData is the transaction state reported by GET /transaction/verify.
// Status is one of "success", "failed", "abandoned", "ongoing", "pending".
type VerifyData struct {
	Status   string   `json:"status"`
	Amount   int64    `json:"amount"`
	Metadata Metadata `json:"metadata"`
}

// Customer is the payer identity attached to webhook events.
type Customer struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// EventData is the transaction snapshot inside a webhook event.
type EventData struct {
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	Status    string   `json:"status"`
	Metadata  Metadata `json:"metadata"`
	Customer  Customer `json:"customer"`
}

// Event is the envelope Paystack POSTs to the webhook endpoint.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the Paystack API with bearer-token auth.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// New creates a Client. An empty baseURL falls back to the live API.
func New(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Initialize creates a hosted checkout session for the transaction.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeData, error) {
	var data InitializeData
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Verify fetches the current state of the transaction for reference.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyData, error) {
	var data VerifyData
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("paystack %s %s: status %d: %s", method, path, resp.StatusCode, raw)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode paystack response: %w", err)
	}
	if !envelope.Status {
		return fmt.Errorf("paystack %s %s: %s", method, path, envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode paystack data: %w", err)
		}
	}
	return nil
}
