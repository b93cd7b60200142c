package users

import (
	"strings"
	"unicode"
)

// localTrunkLength is the digit count of a national number written with a
// leading trunk zero, which gets the +88 country code.
const (
	localTrunkLength   = 11
	localCountryPrefix = "+88"
)

// NormalizeEmail trims and lowercases raw. Blank input yields nil.
func NormalizeEmail(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	email := strings.ToLower(trimmed)
	return &email
}

// NormalizePhone strips every non-digit and prefixes a country code. Blank
// input yields nil. The result is not otherwise validated.
func NormalizePhone(raw string) *string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	var phone string
	if len(digits) == localTrunkLength && strings.HasPrefix(digits, "0") {
		phone = localCountryPrefix + digits
	} else {
		phone = "+" + digits
	}
	return &phone
}

func normalizePhonePtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	return NormalizePhone(*raw)
}

func trimName(name string) string {
	return strings.TrimFunc(name, unicode.IsSpace)
}

func displayNameOrDefault(displayName, first, last string) string {
	if d := strings.TrimSpace(displayName); d != "" {
		return d
	}
	return first + " " + last
}
