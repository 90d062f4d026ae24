// Package gateway adapts the hosted payment provider: checkout session
// creation and webhook event verification.
package gateway

import "context"

// CheckoutSession is a hosted payment session. The customer is redirected to
// URL to complete payment.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionLineItem describes one order line on the hosted payment page.
type SessionLineItem struct {
	Name           string
	Quantity       int
	UnitPriceCents int64
}

// SessionParams are the inputs to a hosted checkout session.
// ClientReferenceID carries the order ID so the completion webhook can find
// the order again.
type SessionParams struct {
	TotalCents        int64
	Currency          string
	LineItems         []SessionLineItem
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
}

// EventType identifies a webhook event kind.
type EventType string

const (
	EventCheckoutCompleted     EventType = "checkout.session.completed"
	EventAsyncPaymentSucceeded EventType = "checkout.session.async_payment_succeeded"
	EventPaymentFailed         EventType = "payment_intent.payment_failed"
	EventPaymentCanceled       EventType = "payment_intent.canceled"
)

// CheckoutSessionData is the payload of a checkout.session.* event.
type CheckoutSessionData struct {
	ID                string `json:"id"`
	ClientReferenceID string `json:"client_reference_id"`
	PaymentIntentID   string `json:"payment_intent"`
}

// PaymentIntentData is the payload of a payment_intent.* event.
type PaymentIntentData struct {
	ID string `json:"id"`
}

// Event is a verified webhook event. Exactly one of the payload fields is set
// depending on Type; unknown types carry neither.
type Event struct {
	ID              string
	Type            EventType
	CheckoutSession *CheckoutSessionData
	PaymentIntent   *PaymentIntentData
}

// PaymentGateway is the adapter consumed by checkout and the webhook handler.
type PaymentGateway interface {
	// CreateCheckoutSession requests a hosted payment session.
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error)

	// VerifyEvent checks the signature header against the raw body and parses
	// the payload. A verification failure returns errs.ErrInvalidSignature;
	// callers must not act on the payload in that case.
	VerifyEvent(payload []byte, signatureHeader string) (*Event, error)
}
