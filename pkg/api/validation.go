package api

import (
	"strings"
	"unicode"
)

// passwordSpecials is the set of special characters the password policy
// accepts.
const passwordSpecials = "$%^*_@"

// passwordMinLength is the minimum password length the policy accepts.
const passwordMinLength = 12

// PasswordPolicyMessage states the full password policy. It is the detail
// of the validation error returned for any policy violation.
const PasswordPolicyMessage = "Invalid password. The password must be alphanumeric, " +
	"include at least one of the special characters " + passwordSpecials +
	", and be at least 12 characters long"

// ValidPassword reports whether a password satisfies the signup policy:
// at least one digit, at least one letter, at least one special character
// from $%^*_@, no whitespace, and at least 12 characters.
func ValidPassword(password string) bool {
	if len(password) < passwordMinLength {
		return false
	}

	var hasDigit, hasLetter, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}

	return hasDigit && hasLetter && hasSpecial
}

// ValidateSignUpRequest checks the signup payload for presence: email,
// password, and lastName must be non-blank. Returns nil when valid.
func ValidateSignUpRequest(req *SignUpRequest) *Error {
	if isBlank(req.Email) || isBlank(req.Password) || isBlank(req.LastName) {
		return NewValidationError("Invalid signup request. All fields must be non-empty")
	}
	if !ValidPassword(req.Password) {
		return NewValidationError(PasswordPolicyMessage)
	}
	return nil
}

// ValidateCreateTableRequest checks the table payload for presence:
// id, number, places, and isVip are required; minOrder is optional.
func ValidateCreateTableRequest(req *CreateTableRequest) *Error {
	if req.ID == nil || req.Number == nil || req.Places == nil || req.IsVip == nil {
		return NewValidationError("Invalid table info")
	}
	return nil
}

// ValidateCreateReservationRequest checks the reservation payload for
// presence of all six business fields. Referential and overlap checks
// happen in the booking component, which has store access.
func ValidateCreateReservationRequest(req *CreateReservationRequest) *Error {
	if req.TableNumber == nil ||
		isBlank(req.ClientName) ||
		isBlank(req.PhoneNumber) ||
		isBlank(req.Date) ||
		isBlank(req.SlotTimeStart) ||
		isBlank(req.SlotTimeEnd) {
		return NewValidationError("Invalid reservation")
	}
	return nil
}

// SlotsOverlap reports whether two half-open [start, end) time slots
// overlap. Inputs are zero-padded "HH:MM" strings, for which lexicographic
// comparison matches chronological order. Back-to-back slots (e1 == s2)
// do not overlap.
func SlotsOverlap(s1, e1, s2, e2 string) bool {
	return !(s1 >= e2 || e1 <= s2)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
