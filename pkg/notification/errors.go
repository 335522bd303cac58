package notification

import "errors"

var (
	// ErrNilNotification is returned when a nil notification is passed to storage.
	ErrNilNotification = errors.New("notification.errors.nil_notification")

	// ErrNotificationIDRequired is returned when a notification lacks an ID.
	ErrNotificationIDRequired = errors.New("notification.errors.id_required")

	// ErrUserIDRequired is returned when a notification lacks a user ID.
	ErrUserIDRequired = errors.New("notification.errors.user_id_required")

	// ErrNotificationNotFound is returned when a notification does not exist
	// or belongs to a different user.
	ErrNotificationNotFound = errors.New("notification.errors.not_found")

	// ErrInvalidCategory is returned for an unknown notification category.
	ErrInvalidCategory = errors.New("notification.errors.invalid_category")

	// ErrInvalidPayload is returned when a payload does not match its category.
	ErrInvalidPayload = errors.New("notification.errors.invalid_payload")

	// ErrUserNotFound is returned by UserDirectory implementations for
	// unknown user IDs. Creation fails outright in this case: a notification
	// without an owner is unroutable.
	ErrUserNotFound = errors.New("notification.errors.user_not_found")

	// ErrTitleRequired is returned when a notification has no title.
	ErrTitleRequired = errors.New("notification.errors.title_required")
)
