package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token is a bearer token identifying the caller of the sync API.
//
// The remote store scopes every record to UserID, the "sub" claim of the
// token. Tokens are issued out of band; this service only signs them for
// tooling and verifies them on every request.
type Token struct {
	// Token is the parsed or freshly signed JWT.
	*jwt.Token `json:"-"`

	// SignedString is the compact JWS form sent in the Authorization header.
	SignedString string `json:"-"`

	// UserID is the parsed "sub" claim.
	UserID int64 `json:"-"`
}

// String returns the compact JWS serialization of the token.
func (t Token) String() string {
	return t.SignedString
}
