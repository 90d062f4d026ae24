package gateway

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockGateway is an in-memory PaymentGateway for tests.
type MockGateway struct {
	// Sessions records every params value passed to CreateCheckoutSession.
	Sessions []SessionParams

	// CreateErr, when set, is returned by CreateCheckoutSession.
	CreateErr error

	// VerifyEvent behavior: returns VerifyErr when set, otherwise NextEvent.
	NextEvent *Event
	VerifyErr error

	counter int64
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Sessions = append(m.Sessions, params)
	n := atomic.AddInt64(&m.counter, 1)
	return &CheckoutSession{
		ID:  fmt.Sprintf("cs_test_%d", n),
		URL: fmt.Sprintf("https://checkout.test/session/%d", n),
	}, nil
}

func (m *MockGateway) VerifyEvent(payload []byte, signatureHeader string) (*Event, error) {
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	if m.NextEvent != nil {
		return m.NextEvent, nil
	}
	return ParseEvent(payload)
}
