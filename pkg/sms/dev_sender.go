package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DevSender implements SMSSender for local development.
// Messages are appended to a JSON lines file instead of being sent through a
// provider, and a fabricated message ID is returned.
type DevSender struct {
	dir                string
	defaultCountryCode string
}

// NewDevSender creates a development SMS sender that saves messages to disk.
// The directory will be created if it doesn't exist.
func NewDevSender(dir, defaultCountryCode string) SMSSender {
	return &DevSender{dir: dir, defaultCountryCode: defaultCountryCode}
}

type smsRecord struct {
	Timestamp string `json:"timestamp"`
	MessageID string `json:"message_id"`
	SendTo    string `json:"send_to"`
	Body      string `json:"body"`
}

// SendSMS appends the message to sms.jsonl in the configured directory.
// Numbers are normalized exactly as the production client would, so local
// runs surface the same validation failures.
func (d *DevSender) SendSMS(ctx context.Context, params SendSMSParams) (*SendResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	to, err := NormalizePhone(params.SendTo, d.defaultCountryCode)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendSMS, err)
	}

	messageID := uuid.New().String()
	record := smsRecord{
		Timestamp: time.Now().Format(time.RFC3339),
		MessageID: messageID,
		SendTo:    to,
		Body:      params.Body,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal record: %v", ErrFailedToSendSMS, err)
	}

	f, err := os.OpenFile(filepath.Join(d.dir, "sms.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open file: %v", ErrFailedToSendSMS, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("%w: failed to write record: %v", ErrFailedToSendSMS, err)
	}

	return &SendResult{MessageID: messageID}, nil
}
