package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
)

// signatureTolerance bounds the age of a webhook timestamp before the event
// is rejected as a possible replay.
const signatureTolerance = 5 * time.Minute

// StripeClient implements PaymentGateway against the Stripe HTTP API.
type StripeClient struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
	logger        *logging.Logger
	now           func() time.Time
}

func NewStripeClient(cfg config.StripeConfig, logger *logging.Logger) *StripeClient {
	return &StripeClient{
		baseURL:       cfg.BaseURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
		now:    time.Now,
	}
}

// CreateCheckoutSession posts form-encoded session params to the hosted
// checkout API and returns the session id and redirect URL.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error) {
	c.logger.Debug("Creating checkout session", logging.Fields{
		"client_reference_id": params.ClientReferenceID,
		"total_cents":         params.TotalCents,
		"line_items":          len(params.LineItems),
	})

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", params.ClientReferenceID)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", params.Currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitPriceCents, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
	}

	endpoint := c.baseURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Checkout session request failed", logging.Fields{
			"client_reference_id": params.ClientReferenceID,
			"error":               err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Checkout session request returned error", logging.Fields{
			"client_reference_id": params.ClientReferenceID,
			"status_code":         resp.StatusCode,
		})
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}

	c.logger.Info("Checkout session created", logging.Fields{
		"session_id":          session.ID,
		"client_reference_id": params.ClientReferenceID,
	})

	return &session, nil
}

// VerifyEvent checks the "t=<ts>,v1=<hmac>" signature header against
// HMAC-SHA256(secret, "<ts>.<payload>") and parses the event on success.
func (c *StripeClient) VerifyEvent(payload []byte, signatureHeader string) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}

	age := c.now().Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", errs.ErrInvalidSignature)
	}

	expected := ComputeSignature(c.webhookSecret, timestamp, payload)
	var match bool
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			match = true
			break
		}
	}
	if !match {
		return nil, fmt.Errorf("%w: signature mismatch", errs.ErrInvalidSignature)
	}

	return ParseEvent(payload)
}

// ComputeSignature returns the hex HMAC-SHA256 of "<timestamp>.<payload>".
func ComputeSignature(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("%w: missing signature header", errs.ErrInvalidSignature)
	}

	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: malformed timestamp", errs.ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: malformed signature header", errs.ErrInvalidSignature)
	}

	return timestamp, signatures, nil
}

// eventEnvelope is the provider's wire format: the payload object is nested
// under data.object and its shape depends on the event type.
type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a raw payload into the tagged Event union. Payload
// fields are only populated for recognized types; unknown types pass through
// so the reconciler can acknowledge them without acting.
func ParseEvent(payload []byte) (*Event, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("malformed event payload: %w", err)
	}

	event := &Event{
		ID:   envelope.ID,
		Type: EventType(envelope.Type),
	}

	switch event.Type {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded:
		var session CheckoutSessionData
		if err := json.Unmarshal(envelope.Data.Object, &session); err != nil {
			return nil, fmt.Errorf("malformed checkout session payload: %w", err)
		}
		event.CheckoutSession = &session
	case EventPaymentFailed, EventPaymentCanceled:
		var intent PaymentIntentData
		if err := json.Unmarshal(envelope.Data.Object, &intent); err != nil {
			return nil, fmt.Errorf("malformed payment intent payload: %w", err)
		}
		event.PaymentIntent = &intent
	}

	return event, nil
}
