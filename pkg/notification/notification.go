package notification

import (
	"time"

	"github.com/google/uuid"
)

// Category identifies the business event a notification surfaces.
type Category string

const (
	CategoryPolicyCreated     Category = "policy_created"
	CategoryPolicyRenewed     Category = "policy_renewed"
	CategoryClaimSubmitted    Category = "claim_submitted"
	CategoryClaimStatusUpdate Category = "claim_status_update"
	CategoryPaymentDue        Category = "payment_due"
	CategoryPaymentReceived   Category = "payment_received"
	CategoryWelcome           Category = "welcome"
	CategoryGeneral           Category = "general"
)

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryPolicyCreated, CategoryPolicyRenewed, CategoryClaimSubmitted,
		CategoryClaimStatusUpdate, CategoryPaymentDue, CategoryPaymentReceived,
		CategoryWelcome, CategoryGeneral:
		return true
	}
	return false
}

// AlwaysEmail reports whether the category qualifies for email regardless of
// user preference. Welcome and general announcements are considered
// account-essential.
func (c Category) AlwaysEmail() bool {
	return c == CategoryWelcome || c == CategoryGeneral
}

// TemplateName returns the message template name for the category.
func (c Category) TemplateName() string {
	return string(c)
}

// Notification represents one business event surfaced to one user. The row is
// persisted before any delivery attempt and is the source of truth that the
// event happened; channel delivery is best-effort on top of it.
type Notification struct {
	ID             uuid.UUID  `json:"id"`
	UserID         string     `json:"user_id"`
	Category       Category   `json:"category"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Payload        Payload    `json:"payload,omitempty"`
	EmailAttempted bool       `json:"email_attempted"`
	SMSAttempted   bool       `json:"sms_attempted"`
	Read           bool       `json:"read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MarkAsRead marks the notification as read with the current timestamp.
func (n *Notification) MarkAsRead() {
	n.Read = true
	now := time.Now()
	n.ReadAt = &now
}
