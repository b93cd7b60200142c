package auth

import "github.com/golang-jwt/jwt/v5"

// PerformerClaims identifies the caller of an administrative request. The
// subject is the performing user's id.
type PerformerClaims struct {
	jwt.RegisteredClaims
}
