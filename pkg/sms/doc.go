// Package sms provides the outbound SMS channel for the notification pipeline.
//
// SMS delivery is fire-and-forget: unlike email there is no tracked lifecycle,
// only the provider's accept/reject result. Phone numbers are normalized to
// E.164 locally (NormalizePhone) and malformed numbers are rejected before any
// provider call.
//
// Two implementations are included: NewTwilioClient for production and
// NewDevSender for offline development.
package sms
