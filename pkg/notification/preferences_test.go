package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

func TestPreferencesChannelSwitchGatesEverything(t *testing.T) {
	t.Parallel()

	prefs := notification.Preferences{
		EmailEnabled: false,
		SMSEnabled:   false,
		Email:        map[notification.Category]bool{notification.CategoryPaymentDue: true},
		SMS:          map[notification.Category]bool{notification.CategoryPaymentDue: true},
	}

	assert.False(t, prefs.EmailAllowed(notification.CategoryPaymentDue))
	assert.False(t, prefs.SMSAllowed(notification.CategoryPaymentDue))
}

func TestPreferencesNilMapAllowsAllCategories(t *testing.T) {
	t.Parallel()

	prefs := notification.DefaultPreferences()

	assert.True(t, prefs.EmailAllowed(notification.CategoryClaimSubmitted))
	assert.True(t, prefs.SMSAllowed(notification.CategoryPaymentDue))
}

func TestPreferencesCategoryMapIsAnAllowlist(t *testing.T) {
	t.Parallel()

	prefs := notification.Preferences{
		EmailEnabled: true,
		Email: map[notification.Category]bool{
			notification.CategoryPaymentDue: true,
		},
	}

	assert.True(t, prefs.EmailAllowed(notification.CategoryPaymentDue))
	assert.False(t, prefs.EmailAllowed(notification.CategoryClaimSubmitted))
}
