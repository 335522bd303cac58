package notification

import "context"

// Preferences holds a user's channel opt-in flags. The per-channel Enabled
// switch gates the whole channel; the per-category maps refine it. A nil
// category map means "all categories allowed" so new categories default to
// opted-in until a user explicitly says otherwise.
type Preferences struct {
	EmailEnabled bool
	SMSEnabled   bool
	Email        map[Category]bool
	SMS          map[Category]bool
}

// DefaultPreferences opts the user into everything.
func DefaultPreferences() Preferences {
	return Preferences{EmailEnabled: true, SMSEnabled: true}
}

// EmailAllowed reports whether the user accepts email for the category.
// The welcome/general override lives in the Router, not here - preferences
// only answer what the user chose.
func (p Preferences) EmailAllowed(category Category) bool {
	if !p.EmailEnabled {
		return false
	}
	if p.Email == nil {
		return true
	}
	return p.Email[category]
}

// SMSAllowed reports whether the user accepts SMS for the category.
func (p Preferences) SMSAllowed(category Category) bool {
	if !p.SMSEnabled {
		return false
	}
	if p.SMS == nil {
		return true
	}
	return p.SMS[category]
}

// User is the slice of the user record the router needs: contact addresses
// and channel preferences.
type User struct {
	ID          string
	Email       string
	Phone       string
	FirstName   string
	Preferences Preferences
}

// UserDirectory resolves users for channel routing. It is an external
// collaborator - the business application owns user records; this pipeline
// only reads them. Implementations return ErrUserNotFound for unknown IDs.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*User, error)
}
