package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "gift-market-backend/internal/common/errors"
)

const (
	MaxNFTIDLength    = 128
	MaxGiftLinkLength = 512
	MaxGiftNameLength = 200
	MaxURLLength      = 1024
	MaxPhoneLength    = 32
	MaxUsernameLength = 32
	MaxQuantity       = 10000
)

var (
	// Telegram usernames: letters, digits and underscores
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	phoneRegex    = regexp.MustCompile(`^[0-9+()\-. ]+$`)
)

// ValidateLength fails when the trimmed value is longer than max runes.
func ValidateLength(field, value string, max int) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) > max {
		return apperrors.NewValidationError(field, fmt.Sprintf("%s cannot exceed %d characters", field, max))
	}
	return nil
}

// ValidateNFTID checks a caller supplied nft id. Empty ids are left to the
// caller, since some flows synthesize one.
func ValidateNFTID(field, id string) error {
	return ValidateLength(field, id, MaxNFTIDLength)
}

// ValidatePhone accepts an empty phone or digits with the usual separators.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if err := ValidateLength("phone", phone, MaxPhoneLength); err != nil {
		return err
	}
	if !phoneRegex.MatchString(phone) {
		return apperrors.NewValidationError("phone", "phone must contain only digits, spaces and + ( ) - .")
	}
	return nil
}

// ValidateUsername accepts an empty username or a Telegram username with an
// optional leading @.
func ValidateUsername(username string) error {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil
	}
	if err := ValidateLength("username", username, MaxUsernameLength); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return apperrors.NewValidationError("username", "username must contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateQuantity allows 0 (meaning the default of one) up to MaxQuantity.
func ValidateQuantity(quantity int) error {
	if quantity < 0 {
		return apperrors.NewValidationError("quantity", "quantity cannot be negative")
	}
	if quantity > MaxQuantity {
		return apperrors.NewValidationError("quantity", fmt.Sprintf("quantity cannot exceed %d", MaxQuantity))
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
