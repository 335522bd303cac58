package sms

import "time"

// Config holds SMS service configuration.
// Twilio credentials are optional to support development environments where
// SMS sending is disabled. SenderNumber establishes the outbound identity and
// must be a Twilio-verified number. DefaultCountryCode is prepended to
// national numbers during normalization. RequestTimeout bounds each Twilio
// API call; the Twilio SDK takes no per-request context, so the HTTP client
// timeout is the enforcement point.
type Config struct {
	TwilioAccountSID   string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string        `env:"TWILIO_AUTH_TOKEN"`
	SenderNumber       string        `env:"SMS_SENDER_NUMBER,required"`
	DefaultCountryCode string        `env:"SMS_DEFAULT_COUNTRY_CODE" envDefault:"1"`
	RequestTimeout     time.Duration `env:"SMS_REQUEST_TIMEOUT" envDefault:"10s"`
}
