package tracking

import "errors"

var (
	ErrNilMessage        = errors.New("tracking.errors.nil_message")
	ErrNilEvent          = errors.New("tracking.errors.nil_event")
	ErrMessageIDRequired = errors.New("tracking.errors.message_id_required")
	ErrDuplicateMessage  = errors.New("tracking.errors.duplicate_message")
	ErrMessageNotFound   = errors.New("tracking.errors.message_not_found")

	// ErrStaleStatus is returned by Store.UpdateStatus when the row's current
	// status no longer matches the expected one. Callers re-read and decide
	// whether the transition still makes sense.
	ErrStaleStatus = errors.New("tracking.errors.stale_status")

	// ErrInvalidTransition is returned by Store.UpdateStatus when the
	// requested status change is not allowed by the delivery state graph.
	// Same-status updates pass: they carry field changes without moving
	// the row.
	ErrInvalidTransition = errors.New("tracking.errors.invalid_transition")

	ErrInvalidInput = errors.New("tracking.errors.invalid_input")
)
