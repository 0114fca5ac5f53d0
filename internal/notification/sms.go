// Package notification delivers SMS messages to participants. Sending
// is best effort and always happens after the surrounding database
// transaction has committed; a delivery failure never fails the
// operation that triggered it.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"screening-booking/pkg/utils"

	"go.uber.org/zap"
)

// Sender delivers one SMS message.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// NewSender picks the gateway client or the logging mock based on config.
func NewSender(config utils.SMSConfig, log *zap.Logger) Sender {
	if config.Mock || config.GatewayURL == "" {
		return NewLogSender(log)
	}
	return NewGatewaySender(config, log)
}

// ==================== GATEWAY SENDER ====================

// GatewaySender posts messages to an HTTP SMS gateway.
type GatewaySender struct {
	client *http.Client
	config utils.SMSConfig
	log    *zap.Logger
}

func NewGatewaySender(config utils.SMSConfig, log *zap.Logger) *GatewaySender {
	return &GatewaySender{
		client: &http.Client{Timeout: 10 * time.Second},
		config: config,
		log:    log.With(zap.String("component", "sms_gateway")),
	}
}

type gatewayPayload struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

func (s *GatewaySender) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(gatewayPayload{
		To:      phone,
		From:    s.config.SenderID,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("Failed to reach SMS gateway", zap.Error(err))
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.log.Error("SMS gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("phone", phone),
		)
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	s.log.Info("SMS sent", zap.String("phone", phone))
	return nil
}

// ==================== LOG SENDER ====================

// LogSender writes messages to the log instead of sending them.
// Used in development and tests.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("component", "sms_mock"))}
}

func (s *LogSender) Send(ctx context.Context, phone, message string) error {
	s.log.Info("MOCK SMS",
		zap.String("phone", phone),
		zap.String("message", message),
	)
	return nil
}

// ==================== MESSAGE TEMPLATES ====================

func OTPMessage(code string, expiryMinutes int) string {
	return fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, expiryMinutes)
}

func BookingConfirmedMessage(eventName, eventDate, eventTime, reference string) string {
	return fmt.Sprintf("Booking confirmed for %s on %s at %s. Ref: %s.",
		eventName, eventDate, eventTime, reference)
}

func BookingCancelledMessage(reference string) string {
	return fmt.Sprintf("Your booking %s has been cancelled. If this wasn't you, please contact support.", reference)
}

func ResultReadyMessage(eventName, reference string) string {
	return fmt.Sprintf("Your screening result for %s (booking %s) is ready. Log in to view it.", eventName, reference)
}
