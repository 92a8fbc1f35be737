// Package notify delivers alert notifications through a transactional email
// REST API (EmailJS-compatible request shape).
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EmailParams are the template parameters sent with each notification.
type EmailParams struct {
	ToEmail     string `json:"to_email,omitempty"`
	Subject     string `json:"subject"`
	DeviceID    string `json:"device_id"`
	Status      string `json:"status"`
	Severity    string `json:"severity"`
	Location    string `json:"location"`
	Heartbeat   int    `json:"heartbeat"`
	Coordinates string `json:"coordinates"`
	Timestamp   string `json:"timestamp"`
	MessageHTML string `json:"message_html"`
	MessageText string `json:"message"`
}

type EmailJSConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	Timeout    time.Duration
}

// EmailJSSender posts one request per notification. The API signals success
// with HTTP 200; any other status is a failed send.
type EmailJSSender struct {
	config EmailJSConfig
	client *http.Client
}

func NewEmailJSSender(config EmailJSConfig, client *http.Client) *EmailJSSender {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	return &EmailJSSender{config: config, client: client}
}

type emailJSRequest struct {
	ServiceID      string      `json:"service_id"`
	TemplateID     string      `json:"template_id"`
	UserID         string      `json:"user_id"`
	TemplateParams EmailParams `json:"template_params"`
}

func (s *EmailJSSender) Send(ctx context.Context, params EmailParams) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      s.config.ServiceID,
		TemplateID:     s.config.TemplateID,
		UserID:         s.config.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("encode email request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send email: unexpected status %s: %s", resp.Status, bytes.TrimSpace(detail))
	}
	return nil
}
