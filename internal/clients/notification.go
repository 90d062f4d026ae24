// Package clients holds HTTP clients for external collaborator services.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
)

// Notification is a request to the notification service, which owns email
// composition and delivery.
type Notification struct {
	Type      string            `json:"type"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NotificationSender sends customer notifications.
type NotificationSender interface {
	Send(ctx context.Context, notification *Notification) error
}

// HTTPNotificationClient implements NotificationSender over HTTP.
type HTTPNotificationClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewHTTPNotificationClient(cfg config.ServiceConfig, logger *logging.Logger) *HTTPNotificationClient {
	return &HTTPNotificationClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (c *HTTPNotificationClient) Send(ctx context.Context, notification *Notification) error {
	c.logger.Debug("Sending notification", logging.Fields{
		"type":      notification.Type,
		"recipient": notification.Recipient,
	})

	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/notifications", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to send notification", logging.Fields{
			"recipient": notification.Recipient,
			"error":     err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}

	c.logger.Info("Notification sent", logging.Fields{
		"type":      notification.Type,
		"recipient": notification.Recipient,
	})

	return nil
}

// MockNotificationSender records notifications for tests.
type MockNotificationSender struct {
	Sent []*Notification
}

func NewMockNotificationSender() *MockNotificationSender {
	return &MockNotificationSender{Sent: make([]*Notification, 0)}
}

func (m *MockNotificationSender) Send(ctx context.Context, notification *Notification) error {
	m.Sent = append(m.Sent, notification)
	return nil
}
