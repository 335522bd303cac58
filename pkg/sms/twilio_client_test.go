package sms_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/sms"
)

func validTwilioConfig() sms.Config {
	return sms.Config{
		TwilioAccountSID:   "AC00000000000000000000000000000000",
		TwilioAuthToken:    "token",
		SenderNumber:       "+15551234567",
		DefaultCountryCode: "1",
		RequestTimeout:     time.Second,
	}
}

func TestNewTwilioClientValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*sms.Config)
	}{
		{"missing account sid", func(c *sms.Config) { c.TwilioAccountSID = "" }},
		{"missing auth token", func(c *sms.Config) { c.TwilioAuthToken = "" }},
		{"missing sender number", func(c *sms.Config) { c.SenderNumber = "" }},
		{"malformed sender number", func(c *sms.Config) { c.SenderNumber = "not-a-number" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validTwilioConfig()
			tt.mutate(&cfg)
			_, err := sms.NewTwilioClient(cfg)
			require.ErrorIs(t, err, sms.ErrInvalidConfig)
		})
	}

	client, err := sms.NewTwilioClient(validTwilioConfig())
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestTwilioClientHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	client, err := sms.NewTwilioClient(validTwilioConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Cancellation short-circuits before any provider call is attempted.
	_, err = client.SendSMS(ctx, sms.SendSMSParams{
		SendTo: "+15559876543",
		Body:   "hi",
	})
	require.ErrorIs(t, err, context.Canceled)
}
