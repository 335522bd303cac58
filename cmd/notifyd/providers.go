package main

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/sms"
)

// Provider calls get a bounded per-call timeout so a slow provider surfaces
// as a recorded failure handled by the retry scheduler instead of a hung
// request.

type timeoutMailer struct {
	next    email.EmailSender
	timeout time.Duration
}

func withEmailTimeout(next email.EmailSender, timeout time.Duration) email.EmailSender {
	if timeout <= 0 {
		return next
	}
	return &timeoutMailer{next: next, timeout: timeout}
}

func (m *timeoutMailer) SendEmail(ctx context.Context, params email.SendEmailParams) (*email.SendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.SendEmail(ctx, params)
}

type timeoutTexter struct {
	next    sms.SMSSender
	timeout time.Duration
}

func withSMSTimeout(next sms.SMSSender, timeout time.Duration) sms.SMSSender {
	if timeout <= 0 {
		return next
	}
	return &timeoutTexter{next: next, timeout: timeout}
}

func (t *timeoutTexter) SendSMS(ctx context.Context, params sms.SendSMSParams) (*sms.SendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SendSMS(ctx, params)
}
