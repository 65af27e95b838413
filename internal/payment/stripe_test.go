package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRetrieveAuthorizationMapsIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents/pi_123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_secret" {
			t.Fatalf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "pi_123",
			"amount": 4000,
			"status": "succeeded",
			"metadata": {"court_id": "12", "user_id": "7"}
		}`))
	}))
	defer srv.Close()

	c := NewStripeClient(srv.URL, "sk_test_secret")
	auth, err := c.RetrieveAuthorization(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	want := Authorization{ID: "pi_123", AmountCents: 4000, Status: "succeeded", CourtID: 12, UserID: 7}
	if auth != want {
		t.Fatalf("got %+v, want %+v", auth, want)
	}
}

func TestRetrieveAuthorizationNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"message": "No such payment_intent"}}`))
	}))
	defer srv.Close()

	c := NewStripeClient(srv.URL, "sk_test_secret")
	if _, err := c.RetrieveAuthorization(context.Background(), "pi_missing"); !errors.Is(err, ErrAuthorizationNotFound) {
		t.Fatalf("expected ErrAuthorizationNotFound, got %v", err)
	}
}

func TestRetrieveAuthorizationSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid API Key provided"}}`))
	}))
	defer srv.Close()

	c := NewStripeClient(srv.URL, "sk_bad")
	_, err := c.RetrieveAuthorization(context.Background(), "pi_123")
	if err == nil || errors.Is(err, ErrAuthorizationNotFound) {
		t.Fatalf("expected a non-sentinel API error, got %v", err)
	}
}

func TestRetrieveAuthorizationRejectsOutOfRangeAmounts(t *testing.T) {
	cases := []struct {
		name   string
		amount string
	}{
		{"above uint32", "5000000000"},
		{"negative", "-100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{
					"id": "pi_123",
					"amount": ` + tc.amount + `,
					"status": "succeeded",
					"metadata": {"court_id": "12", "user_id": "7"}
				}`))
			}))
			defer srv.Close()

			c := NewStripeClient(srv.URL, "sk_test_secret")
			if _, err := c.RetrieveAuthorization(context.Background(), "pi_123"); err == nil {
				t.Fatal("expected an error for an amount outside the cents range")
			}
		})
	}
}

func TestRetrieveAuthorizationIgnoresBadMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "pi_123",
			"amount": 4000,
			"status": "succeeded",
			"metadata": {"court_id": "not-a-number"}
		}`))
	}))
	defer srv.Close()

	c := NewStripeClient(srv.URL, "sk_test_secret")
	auth, err := c.RetrieveAuthorization(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if auth.CourtID != 0 || auth.UserID != 0 {
		t.Fatalf("unparseable metadata must leave bindings zero, got %+v", auth)
	}
}
