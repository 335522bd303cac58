package notification

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileDirectory is a UserDirectory loaded from a YAML file. It exists for the
// standalone daemon and tests; embedded deployments implement UserDirectory
// over the application's own user records instead.
//
// File format:
//
//	users:
//	  - id: usr_123
//	    email: jane@example.com
//	    phone: "+15551234567"
//	    first_name: Jane
//	    preferences:
//	      email_enabled: true
//	      sms_enabled: true
//	      email:
//	        claim_status_update: false
//
// Omitting a preferences block opts the user into everything. An empty
// category map under email/sms means every category is disabled for that
// channel; omitting the map means all allowed.
type FileDirectory struct {
	users map[string]User
}

type fileDirectoryDoc struct {
	Users []fileUser `yaml:"users"`
}

type filePreferences struct {
	EmailEnabled *bool             `yaml:"email_enabled"`
	SMSEnabled   *bool             `yaml:"sms_enabled"`
	Email        map[Category]bool `yaml:"email"`
	SMS          map[Category]bool `yaml:"sms"`
}

type fileUser struct {
	ID          string           `yaml:"id"`
	Email       string           `yaml:"email"`
	Phone       string           `yaml:"phone"`
	FirstName   string           `yaml:"first_name"`
	Preferences *filePreferences `yaml:"preferences"`
}

// NewFileDirectory loads users from the YAML file at path.
func NewFileDirectory(path string) (*FileDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read user directory file: %w", err)
	}

	var doc fileDirectoryDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse user directory file: %w", err)
	}

	users := make(map[string]User, len(doc.Users))
	for _, fu := range doc.Users {
		if fu.ID == "" {
			return nil, fmt.Errorf("user directory entry without id in %s", path)
		}

		prefs := DefaultPreferences()
		if fp := fu.Preferences; fp != nil {
			if fp.EmailEnabled != nil {
				prefs.EmailEnabled = *fp.EmailEnabled
			}
			if fp.SMSEnabled != nil {
				prefs.SMSEnabled = *fp.SMSEnabled
			}
			prefs.Email = fp.Email
			prefs.SMS = fp.SMS
		}

		users[fu.ID] = User{
			ID:          fu.ID,
			Email:       fu.Email,
			Phone:       fu.Phone,
			FirstName:   fu.FirstName,
			Preferences: prefs,
		}
	}

	return &FileDirectory{users: users}, nil
}

func (d *FileDirectory) GetUser(ctx context.Context, userID string) (*User, error) {
	user, ok := d.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, userID)
	}
	return &user, nil
}
