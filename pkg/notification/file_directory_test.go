package notification_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

func writeUsersFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileDirectoryLoadsUsersWithPreferences(t *testing.T) {
	t.Parallel()

	path := writeUsersFile(t, `
users:
  - id: usr_1
    email: jane@example.com
    phone: "+15551234567"
    first_name: Jane
    preferences:
      email_enabled: true
      sms_enabled: false
      email:
        claim_status_update: false
  - id: usr_2
    email: bob@example.com
`)

	dir, err := notification.NewFileDirectory(path)
	require.NoError(t, err)

	jane, err := dir.GetUser(context.Background(), "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", jane.Email)
	assert.Equal(t, "+15551234567", jane.Phone)
	assert.Equal(t, "Jane", jane.FirstName)
	assert.True(t, jane.Preferences.EmailEnabled)
	assert.False(t, jane.Preferences.SMSEnabled)
	assert.False(t, jane.Preferences.EmailAllowed(notification.CategoryClaimStatusUpdate))

	// Omitted preferences block opts the user into everything.
	bob, err := dir.GetUser(context.Background(), "usr_2")
	require.NoError(t, err)
	assert.True(t, bob.Preferences.EmailEnabled)
	assert.True(t, bob.Preferences.SMSEnabled)
	assert.True(t, bob.Preferences.EmailAllowed(notification.CategoryPaymentDue))
}

func TestFileDirectoryUnknownUser(t *testing.T) {
	t.Parallel()

	path := writeUsersFile(t, "users:\n  - id: usr_1\n")
	dir, err := notification.NewFileDirectory(path)
	require.NoError(t, err)

	_, err = dir.GetUser(context.Background(), "usr_ghost")
	require.ErrorIs(t, err, notification.ErrUserNotFound)
}

func TestFileDirectoryRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := notification.NewFileDirectory(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = notification.NewFileDirectory(writeUsersFile(t, "users: [not a map"))
	require.Error(t, err)

	_, err = notification.NewFileDirectory(writeUsersFile(t, "users:\n  - email: nobody@example.com\n"))
	require.Error(t, err, "entry without id is rejected")
}
