package sms

import (
	"context"
	"fmt"
	"strings"
)

// SMSSender represents an interface for sending SMS messages.
// Implementations normalize recipient numbers to E.164 before dispatch and
// reject malformed numbers without a provider call.
type SMSSender interface {
	SendSMS(ctx context.Context, params SendSMSParams) (*SendResult, error)
}

// SendSMSParams represents the parameters for sending an SMS message.
type SendSMSParams struct {
	SendTo string `json:"send_to"` // Recipient phone number, any common format
	Body   string `json:"body"`    // Message text
}

// SendResult carries the provider's acknowledgment of an accepted message.
type SendResult struct {
	MessageID string `json:"message_id"`
}

// Validate checks that the parameters are sufficient for a send attempt.
// Phone validation happens separately in NormalizePhone so malformed numbers
// are rejected before any provider call.
func (p SendSMSParams) Validate() error {
	if strings.TrimSpace(p.SendTo) == "" {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	if strings.TrimSpace(p.Body) == "" {
		return fmt.Errorf("%w: Body is required", ErrInvalidParams)
	}
	return nil
}
