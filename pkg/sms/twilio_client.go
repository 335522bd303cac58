package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type twilioClient struct {
	client *twilio.RestClient
	config Config
}

// NewTwilioClient creates a Twilio-backed SMS sender.
// Credentials are required for runtime operation - this enforces explicit
// configuration rather than silent failures in production.
func NewTwilioClient(cfg Config) (SMSSender, error) {
	if cfg.TwilioAccountSID == "" {
		return nil, fmt.Errorf("%w: TwilioAccountSID is required", ErrInvalidConfig)
	}
	if cfg.TwilioAuthToken == "" {
		return nil, fmt.Errorf("%w: TwilioAuthToken is required", ErrInvalidConfig)
	}
	if cfg.SenderNumber == "" {
		return nil, fmt.Errorf("%w: SenderNumber is required", ErrInvalidConfig)
	}
	sender, err := NormalizePhone(cfg.SenderNumber, cfg.DefaultCountryCode)
	if err != nil {
		return nil, fmt.Errorf("%w: SenderNumber must be a valid phone number", ErrInvalidConfig)
	}
	cfg.SenderNumber = sender

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	// The Twilio SDK takes no per-request context, so the API call is
	// bounded through the underlying HTTP client instead.
	if cfg.RequestTimeout > 0 {
		client.Client.SetTimeout(cfg.RequestTimeout)
	}

	return &twilioClient{
		client: client,
		config: cfg,
	}, nil
}

// MustNewTwilioClient creates a Twilio client that panics on invalid config,
// failing fast during initialization rather than allowing a broken service to start.
func MustNewTwilioClient(cfg Config) SMSSender {
	client, err := NewTwilioClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// SendSMS implements SMSSender using Twilio's messaging API.
// The recipient number is normalized to E.164 before dispatch; malformed
// numbers are rejected locally without a provider call. Cancellation is
// honored before the call; once in flight, RequestTimeout bounds it.
func (c *twilioClient) SendSMS(ctx context.Context, params SendSMSParams) (*SendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	to, err := NormalizePhone(params.SendTo, c.config.DefaultCountryCode)
	if err != nil {
		return nil, err
	}

	msgParams := &twilioapi.CreateMessageParams{}
	msgParams.SetTo(to)
	msgParams.SetFrom(c.config.SenderNumber)
	msgParams.SetBody(params.Body)

	resp, err := c.client.Api.CreateMessage(msgParams)
	if err != nil {
		return nil, errors.Join(ErrFailedToSendSMS, err)
	}
	if resp.Sid == nil {
		return nil, errors.Join(ErrFailedToSendSMS, errors.New("twilio response missing message sid"))
	}
	return &SendResult{MessageID: *resp.Sid}, nil
}
