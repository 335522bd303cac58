package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/email"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  email.SendEmailParams
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid params",
			params: email.SendEmailParams{
				SendTo:   "user@example.com",
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
				Tag:      "test",
			},
			wantErr: false,
		},
		{
			name: "valid with text body only",
			params: email.SendEmailParams{
				SendTo:   "user@example.com",
				Subject:  "Test Subject",
				BodyText: "plain body",
			},
			wantErr: false,
		},
		{
			name: "empty SendTo",
			params: email.SendEmailParams{
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "SendTo is required",
		},
		{
			name: "whitespace only SendTo",
			params: email.SendEmailParams{
				SendTo:   "   ",
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "SendTo is required",
		},
		{
			name: "invalid email format",
			params: email.SendEmailParams{
				SendTo:   "invalid-email",
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "SendTo must be a valid email address",
		},
		{
			name: "invalid email missing domain",
			params: email.SendEmailParams{
				SendTo:   "user@",
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "SendTo must be a valid email address",
		},
		{
			name: "empty Subject",
			params: email.SendEmailParams{
				SendTo:   "user@example.com",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "Subject is required",
		},
		{
			name: "no body at all",
			params: email.SendEmailParams{
				SendTo:  "user@example.com",
				Subject: "Test Subject",
			},
			wantErr: true,
			errMsg:  "BodyHTML or BodyText is required",
		},
		{
			name: "complex valid email",
			params: email.SendEmailParams{
				SendTo:   "test.user+tag@sub.example.com",
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("successful send with tag", func(t *testing.T) {
		t.Parallel()

		tempDir := t.TempDir()
		sender := email.NewDevSender(tempDir)

		result, err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Test Email",
			BodyHTML: "<p>Test content</p>",
			Tag:      "welcome",
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotEmpty(t, result.MessageID, "dev sender fabricates a message id")

		files, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		require.Len(t, files, 2) // HTML + JSON files

		var htmlFile, jsonFile string
		for _, file := range files {
			if strings.HasSuffix(file.Name(), ".html") {
				htmlFile = filepath.Join(tempDir, file.Name())
			}
			if strings.HasSuffix(file.Name(), ".json") {
				jsonFile = filepath.Join(tempDir, file.Name())
			}
		}
		require.NotEmpty(t, htmlFile)
		require.NotEmpty(t, jsonFile)

		htmlContent, err := os.ReadFile(htmlFile)
		require.NoError(t, err)
		assert.Equal(t, "<p>Test content</p>", string(htmlContent))

		jsonContent, err := os.ReadFile(jsonFile)
		require.NoError(t, err)
		var metadata map[string]any
		require.NoError(t, json.Unmarshal(jsonContent, &metadata))
		assert.Equal(t, "user@example.com", metadata["send_to"])
		assert.Equal(t, "Test Email", metadata["subject"])
		assert.Equal(t, "welcome", metadata["tag"])
		assert.Equal(t, result.MessageID, metadata["message_id"])
	})

	t.Run("send without tag uses subject in filename", func(t *testing.T) {
		t.Parallel()

		tempDir := t.TempDir()
		sender := email.NewDevSender(tempDir)

		_, err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Payment Reminder",
			BodyHTML: "<p>Invoice due</p>",
		})
		require.NoError(t, err)

		files, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		require.Len(t, files, 2)

		found := false
		for _, file := range files {
			if strings.Contains(file.Name(), "payment_reminder") {
				found = true
				break
			}
		}
		assert.True(t, found, "expected filename to contain sanitized subject")
	})

	t.Run("validation error leaves no files", func(t *testing.T) {
		t.Parallel()

		tempDir := t.TempDir()
		sender := email.NewDevSender(tempDir)

		_, err := sender.SendEmail(ctx, email.SendEmailParams{
			Subject:  "Test Email",
			BodyHTML: "<p>Test content</p>",
		})
		require.ErrorIs(t, err, email.ErrInvalidParams)

		files, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("directory creation failure", func(t *testing.T) {
		t.Parallel()

		sender := email.NewDevSender("/dev/null/cannot-create-here")
		_, err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Test Email",
			BodyHTML: "<p>Test content</p>",
		})
		require.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.Contains(t, err.Error(), "failed to create directory")
	})

	t.Run("unicode content preserved", func(t *testing.T) {
		t.Parallel()

		tempDir := t.TempDir()
		sender := email.NewDevSender(tempDir)

		_, err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Unicode Test",
			BodyHTML: "<p>Test with unicode: 你好世界</p>",
			Tag:      "unicode-test",
		})
		require.NoError(t, err)

		files, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		for _, file := range files {
			if strings.HasSuffix(file.Name(), ".html") {
				content, err := os.ReadFile(filepath.Join(tempDir, file.Name()))
				require.NoError(t, err)
				assert.Contains(t, string(content), "你好世界")
			}
		}
	})
}

func TestPostmarkClientConfigValidation(t *testing.T) {
	t.Parallel()

	valid := email.Config{
		PostmarkServerToken:  "test-server-token",
		PostmarkAccountToken: "test-account-token",
		SenderEmail:          "sender@example.com",
		SupportEmail:         "support@example.com",
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		client, err := email.NewPostmarkClient(valid)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.NotPanics(t, func() { email.MustNewPostmarkClient(valid) })
	})

	t.Run("invalid configs", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			mutate func(email.Config) email.Config
		}{
			{"missing server token", func(c email.Config) email.Config { c.PostmarkServerToken = ""; return c }},
			{"missing account token", func(c email.Config) email.Config { c.PostmarkAccountToken = ""; return c }},
			{"missing sender", func(c email.Config) email.Config { c.SenderEmail = ""; return c }},
			{"malformed sender", func(c email.Config) email.Config { c.SenderEmail = "not-an-email"; return c }},
			{"missing support", func(c email.Config) email.Config { c.SupportEmail = ""; return c }},
			{"malformed support", func(c email.Config) email.Config { c.SupportEmail = "nope"; return c }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				cfg := tt.mutate(valid)
				_, err := email.NewPostmarkClient(cfg)
				require.ErrorIs(t, err, email.ErrInvalidConfig)
				assert.Panics(t, func() { email.MustNewPostmarkClient(cfg) })
			})
		}
	})
}
