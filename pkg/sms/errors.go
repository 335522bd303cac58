package sms

import "errors"

var (
	ErrFailedToSendSMS    = errors.New("sms.errors.failed_to_send_sms")
	ErrInvalidConfig      = errors.New("sms.errors.invalid_config")
	ErrInvalidParams      = errors.New("sms.errors.invalid_params")
	ErrInvalidPhoneNumber = errors.New("sms.errors.invalid_phone_number")
)
