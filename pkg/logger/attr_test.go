package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

func TestErrorAttr(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.Equal(t, slog.Attr{}, logger.Error(nil), "nil error yields empty attr")
}

func TestErrorsAttr(t *testing.T) {
	t.Parallel()

	attr := logger.Errors(errors.New("a"), nil, errors.New("b"))
	assert.Equal(t, "errors", attr.Key)
	assert.Len(t, attr.Value.Group(), 2)

	assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil), "all-nil yields empty attr")
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{"provider message id", logger.ProviderMessageID("pm-1"), "provider_message_id", "pm-1"},
		{"category", logger.Category("payment_due"), "category", "payment_due"},
		{"channel", logger.Channel("email"), "channel", "email"},
		{"recipient", logger.Recipient("jane@example.com"), "recipient", "jane@example.com"},
		{"event type", logger.EventType("Delivery"), "event_type", "Delivery"},
		{"status", logger.Status("sent"), "status", "sent"},
		{"component", logger.Component("retrier"), "component", "retrier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.String())
		})
	}
}

func TestNilSafeIDAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.UserID(nil))
	assert.Equal(t, slog.Attr{}, logger.MessageID(nil))
	assert.Equal(t, slog.Attr{}, logger.RequestID(nil))
	assert.Equal(t, slog.Attr{}, logger.ProviderMessageID(""))

	attr := logger.UserID("usr_1")
	assert.Equal(t, "user_id", attr.Key)

	assert.Equal(t, "retry_count", logger.RetryCount(3).Key)
	assert.Equal(t, int64(3), logger.RetryCount(3).Value.Int64())
}
