package security

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/angelmondragon/accounts-backend/pkg/config"
)

// CheckPolicy returns the first rule the password breaks, or "" when it
// satisfies the policy.
func CheckPolicy(password string, policy config.PasswordPolicyConfig) string {
	length := utf8.RuneCountInString(password)
	if length < policy.MinLength {
		return fmt.Sprintf("Password must be at least %d characters long.", policy.MinLength)
	}
	if policy.MaxLength > 0 && length > policy.MaxLength {
		return fmt.Sprintf("Password must not exceed %d characters.", policy.MaxLength)
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	switch {
	case policy.RequireUpper && !upper:
		return "Password must contain at least one uppercase letter."
	case policy.RequireLower && !lower:
		return "Password must contain at least one lowercase letter."
	case policy.RequireDigit && !digit:
		return "Password must contain at least one digit."
	case policy.RequireSymbol && !symbol:
		return "Password must contain at least one special character."
	}
	return ""
}
