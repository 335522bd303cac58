package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

func TestValidatePayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category notification.Category
		payload  notification.Payload
		wantErr  bool
	}{
		{"policy created with policy payload", notification.CategoryPolicyCreated, notification.PolicyPayload{PolicyNumber: "POL-1"}, false},
		{"policy renewed with policy payload", notification.CategoryPolicyRenewed, notification.PolicyPayload{PolicyNumber: "POL-1"}, false},
		{"claim submitted with claim payload", notification.CategoryClaimSubmitted, notification.ClaimPayload{ClaimNumber: "CLM-1"}, false},
		{"payment due with payment payload", notification.CategoryPaymentDue, notification.PaymentPayload{InvoiceNumber: "INV-1", Amount: "10.00"}, false},
		{"welcome without payload", notification.CategoryWelcome, nil, false},
		{"general without payload", notification.CategoryGeneral, nil, false},
		{"policy category with claim payload", notification.CategoryPolicyCreated, notification.ClaimPayload{ClaimNumber: "CLM-1"}, true},
		{"claim category without payload", notification.CategoryClaimSubmitted, nil, true},
		{"welcome with unexpected payload", notification.CategoryWelcome, notification.PolicyPayload{PolicyNumber: "POL-1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := notification.ValidatePayload(tt.category, tt.payload)
			if tt.wantErr {
				require.ErrorIs(t, err, notification.ErrInvalidPayload)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload notification.Payload
	}{
		{"policy", notification.PolicyPayload{PolicyNumber: "POL-42", ProductName: "Home", ExpiresAt: "2027-01-01"}},
		{"claim", notification.ClaimPayload{ClaimNumber: "CLM-7", Status: "approved", Amount: "1200.00"}},
		{"payment", notification.PaymentPayload{InvoiceNumber: "INV-9", Amount: "99.90", DueDate: "2026-09-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, err := notification.MarshalPayload(tt.payload)
			require.NoError(t, err)
			require.NotEmpty(t, raw)

			got, err := notification.UnmarshalPayload(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestPayloadNilRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := notification.MarshalPayload(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	got, err := notification.UnmarshalPayload(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalPayloadUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := notification.UnmarshalPayload([]byte(`{"kind":"mystery","data":{}}`))
	require.ErrorIs(t, err, notification.ErrInvalidPayload)
}

func TestPayloadVars(t *testing.T) {
	t.Parallel()

	vars := notification.ClaimPayload{ClaimNumber: "CLM-7", Status: "approved"}.Vars()
	assert.Equal(t, "CLM-7", vars["claimNumber"])
	assert.Equal(t, "approved", vars["status"])
}
