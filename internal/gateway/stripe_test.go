package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
)

const testWebhookSecret = "whsec_test"

func testClient(now time.Time) *StripeClient {
	return &StripeClient{
		webhookSecret: testWebhookSecret,
		logger:        logging.New("test"),
		now:           func() time.Time { return now },
	}
}

func signedHeader(secret string, ts int64, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", ts, ComputeSignature(secret, ts, payload))
}

func completedPayload(orderID, paymentIntentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","client_reference_id":%q,"payment_intent":%q}}}`,
		orderID, paymentIntentID,
	))
}

func TestVerifyEventValidSignature(t *testing.T) {
	now := time.Now()
	c := testClient(now)
	payload := completedPayload("ord_123", "pi_456")

	event, err := c.VerifyEvent(payload, signedHeader(testWebhookSecret, now.Unix(), payload))
	if err != nil {
		t.Fatalf("VerifyEvent() unexpected error: %v", err)
	}

	if event.Type != EventCheckoutCompleted {
		t.Errorf("event type = %q, want %q", event.Type, EventCheckoutCompleted)
	}
	if event.CheckoutSession == nil {
		t.Fatal("expected checkout session payload")
	}
	if event.CheckoutSession.ClientReferenceID != "ord_123" {
		t.Errorf("client_reference_id = %q, want ord_123", event.CheckoutSession.ClientReferenceID)
	}
	if event.CheckoutSession.PaymentIntentID != "pi_456" {
		t.Errorf("payment_intent = %q, want pi_456", event.CheckoutSession.PaymentIntentID)
	}
}

func TestVerifyEventRejectsBadSignature(t *testing.T) {
	now := time.Now()
	c := testClient(now)
	payload := completedPayload("ord_123", "pi_456")

	header := signedHeader("whsec_other", now.Unix(), payload)
	if _, err := c.VerifyEvent(payload, header); !errors.Is(err, errs.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyEventRejectsTamperedPayload(t *testing.T) {
	now := time.Now()
	c := testClient(now)
	payload := completedPayload("ord_123", "pi_456")
	header := signedHeader(testWebhookSecret, now.Unix(), payload)

	tampered := completedPayload("ord_999", "pi_456")
	if _, err := c.VerifyEvent(tampered, header); !errors.Is(err, errs.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyEventRejectsStaleTimestamp(t *testing.T) {
	now := time.Now()
	c := testClient(now)
	payload := completedPayload("ord_123", "pi_456")

	stale := now.Add(-6 * time.Minute).Unix()
	header := signedHeader(testWebhookSecret, stale, payload)
	if _, err := c.VerifyEvent(payload, header); !errors.Is(err, errs.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyEventMalformedHeader(t *testing.T) {
	c := testClient(time.Now())
	payload := completedPayload("ord_123", "pi_456")

	tests := []struct {
		name   string
		header string
	}{
		{"empty", ""},
		{"missing timestamp", "v1=deadbeef"},
		{"missing signature", "t=1700000000"},
		{"garbage timestamp", "t=abc,v1=deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.VerifyEvent(payload, tt.header); !errors.Is(err, errs.ErrInvalidSignature) {
				t.Errorf("header %q: expected ErrInvalidSignature, got %v", tt.header, err)
			}
		})
	}
}

func TestParseEventPaymentIntent(t *testing.T) {
	payload := []byte(`{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_789"}}}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent() unexpected error: %v", err)
	}
	if event.Type != EventPaymentFailed {
		t.Errorf("event type = %q, want %q", event.Type, EventPaymentFailed)
	}
	if event.PaymentIntent == nil || event.PaymentIntent.ID != "pi_789" {
		t.Errorf("payment intent = %+v, want id pi_789", event.PaymentIntent)
	}
}

func TestParseEventUnknownTypePassesThrough(t *testing.T) {
	payload := []byte(`{"id":"evt_3","type":"invoice.finalized","data":{"object":{}}}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent() unexpected error: %v", err)
	}
	if event.CheckoutSession != nil || event.PaymentIntent != nil {
		t.Error("unknown event types must carry no payload")
	}
}

func TestParseEventMalformedPayload(t *testing.T) {
	if _, err := ParseEvent([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("client_reference_id"); got != "ord_123" {
			t.Errorf("client_reference_id = %q", got)
		}
		if got := r.PostForm.Get("line_items[0][price_data][unit_amount]"); got != "1500" {
			t.Errorf("unit_amount = %q", got)
		}
		if got := r.PostForm.Get("line_items[0][quantity]"); got != "2" {
			t.Errorf("quantity = %q", got)
		}

		json.NewEncoder(w).Encode(CheckoutSession{
			ID:  "cs_live_1",
			URL: "https://checkout.test/pay/cs_live_1",
		})
	}))
	defer srv.Close()

	c := &StripeClient{
		baseURL:    srv.URL,
		secretKey:  "sk_test",
		httpClient: srv.Client(),
		logger:     logging.New("test"),
		now:        time.Now,
	}

	session, err := c.CreateCheckoutSession(context.Background(), SessionParams{
		TotalCents:        3000,
		Currency:          "usd",
		ClientReferenceID: "ord_123",
		SuccessURL:        "https://shop.test/success",
		CancelURL:         "https://shop.test/cancel",
		LineItems: []SessionLineItem{
			{Name: "Glazed Mug", Quantity: 2, UnitPriceCents: 1500},
		},
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession() unexpected error: %v", err)
	}
	if session.ID != "cs_live_1" {
		t.Errorf("session id = %q, want cs_live_1", session.ID)
	}
	if session.URL == "" {
		t.Error("expected a redirect URL")
	}
}

func TestCreateCheckoutSessionGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &StripeClient{
		baseURL:    srv.URL,
		secretKey:  "sk_test",
		httpClient: srv.Client(),
		logger:     logging.New("test"),
		now:        time.Now,
	}

	if _, err := c.CreateCheckoutSession(context.Background(), SessionParams{}); err == nil {
		t.Error("expected error on non-200 response")
	}
}
