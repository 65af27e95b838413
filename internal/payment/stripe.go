package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// StripeClient retrieves payment intents from the Stripe REST API. The
// frontend creates the intent and attaches court_id and user_id to its
// metadata; this client only reads intents back so the engine can verify
// them. Only the retrieve endpoint is implemented.
type StripeClient struct {
	baseURL   string
	secretKey string
	hc        *http.Client
}

// NewStripeClient builds a client for the given API base (usually
// https://api.stripe.com) and secret key.
func NewStripeClient(baseURL, secretKey string) *StripeClient {
	return &StripeClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		hc:        &http.Client{Timeout: 10 * time.Second},
	}
}

// paymentIntent mirrors the subset of Stripe's payment intent payload the
// engine needs. Metadata values arrive as strings.
type paymentIntent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
	Metadata struct {
		CourtID string `json:"court_id"`
		UserID  string `json:"user_id"`
	} `json:"metadata"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RetrieveAuthorization fetches a payment intent by id and maps it to an
// Authorization. A 404 from the API becomes ErrAuthorizationNotFound;
// metadata that fails to parse leaves the bound identifiers zero, which the
// engine rejects as a mismatch.
func (c *StripeClient) RetrieveAuthorization(ctx context.Context, id string) (Authorization, error) {
	url := fmt.Sprintf("%s/v1/payment_intents/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Authorization{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return Authorization{}, fmt.Errorf("stripe: retrieve payment intent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Authorization{}, fmt.Errorf("stripe: read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Authorization{}, ErrAuthorizationNotFound
	}
	if resp.StatusCode >= 400 {
		var se stripeError
		_ = json.Unmarshal(body, &se)
		if se.Error.Message != "" {
			return Authorization{}, fmt.Errorf("stripe: %s (status=%d)", se.Error.Message, resp.StatusCode)
		}
		return Authorization{}, fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}

	var pi paymentIntent
	if err := json.Unmarshal(body, &pi); err != nil {
		return Authorization{}, fmt.Errorf("stripe: decode payment intent: %w", err)
	}

	if pi.Amount < 0 || pi.Amount > math.MaxUint32 {
		return Authorization{}, fmt.Errorf("stripe: amount %d out of range", pi.Amount)
	}
	auth := Authorization{ID: pi.ID, Status: pi.Status, AmountCents: uint32(pi.Amount)}
	if n, err := strconv.ParseUint(pi.Metadata.CourtID, 10, 64); err == nil {
		auth.CourtID = n
	}
	if n, err := strconv.ParseUint(pi.Metadata.UserID, 10, 64); err == nil {
		auth.UserID = n
	}
	return auth, nil
}
