package sms

import (
	"fmt"
	"strings"
)

// E.164 allows at most 15 digits including the country code.
const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// NormalizePhone converts a phone number in any common format to E.164.
//
// The cleanup is intentionally permissive about separators: spaces, dashes,
// dots and parentheses are stripped before validation. Numbers without a
// country code are assumed to be national numbers in defaultCountryCode
// (e.g. "1" for NANP). Malformed numbers return ErrInvalidPhoneNumber so
// callers can reject them locally without a provider round trip.
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty number", ErrInvalidPhoneNumber)
	}

	hasPlus := strings.HasPrefix(trimmed, "+")

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()

	if number == "" {
		return "", fmt.Errorf("%w: no digits in %q", ErrInvalidPhoneNumber, raw)
	}

	if !hasPlus {
		// National numbers get the default country code; numbers already
		// carrying it are left alone (NANP 11-digit "1XXXXXXXXXX" case).
		if len(number) == minPhoneDigits {
			number = defaultCountryCode + number
		} else if !strings.HasPrefix(number, defaultCountryCode) && len(number) < minPhoneDigits {
			return "", fmt.Errorf("%w: %q is too short", ErrInvalidPhoneNumber, raw)
		}
	}

	if len(number) < minPhoneDigits || len(number) > maxPhoneDigits {
		return "", fmt.Errorf("%w: %q has %d digits, want %d-%d", ErrInvalidPhoneNumber, raw, len(number), minPhoneDigits, maxPhoneDigits)
	}
	if number[0] == '0' {
		return "", fmt.Errorf("%w: country code cannot start with 0", ErrInvalidPhoneNumber)
	}

	return "+" + number, nil
}
