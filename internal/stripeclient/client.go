package stripeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"payment-webhook-service/internal/config"

	"github.com/pkg/errors"
)

const (
	DefaultBaseURL   = "https://api.stripe.com"
	defaultTimeoutMs = 10_000
)

// PaymentIntent is the slice of the provider's API response the platform
// reads back when a checkout completes. Unlike webhook payloads it is not
// validated strictly; the API is authenticated and versioned.
type PaymentIntent struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Customer      string `json:"customer"`
	PaymentMethod string `json:"payment_method"`
}

// Client is a thin REST client for the provider API, limited to the calls
// the webhook handlers need.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := time.Duration(config.GetEnvInt("STRIPE_CLIENT_TIMEOUT_MS", defaultTimeoutMs)) * time.Millisecond
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	url := fmt.Sprintf("%s/v1/payment_intents/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating payment intent request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "retrieving payment intent")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading payment intent response")
	}

	if resp.StatusCode >= 400 {
		return nil, errors.Errorf("payment intent %s: error response %s", id, resp.Status)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, errors.Wrap(err, "decoding payment intent response")
	}

	return &intent, nil
}
