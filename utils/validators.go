package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// IsValidUUID accepts only the canonical 36 character form of an RFC 4122 v1-v5 UUID.
func IsValidUUID(value string) bool {
	return uuidPattern.MatchString(value)
}

// ParseID validates and parses an identifier coming from a path or body.
func ParseID(value, field string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if !IsValidUUID(value) {
		return uuid.Nil, NewInvalidIdentifier("invalid %s", field)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, NewInvalidIdentifier("invalid %s", field)
	}
	return id, nil
}

// ValidateLength checks the rune length of a trimmed value.
func ValidateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min || n > max {
		return NewInvalidInput("%s must be between %d and %d characters", field, min, max)
	}
	return nil
}

func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return NewInvalidPrice("price must be a non-negative number")
	}
	return nil
}

func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return NewInvalidQuantity("quantity must be a positive integer")
	}
	return nil
}
