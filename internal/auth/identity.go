// Package auth extracts an optional reader identity from bearer tokens so
// recommendations can be personalized. Authentication and authorization stay
// with the CMS; an absent or invalid token simply means an anonymous reader.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityExtractor reads the subject claim from reader tokens.
type IdentityExtractor struct {
	secret []byte
}

// NewIdentityExtractor creates a new identity extractor. With an empty
// secret, tokens are parsed without signature verification; the surrounding
// gateway is then expected to have verified them already.
func NewIdentityExtractor(secret string) *IdentityExtractor {
	return &IdentityExtractor{secret: []byte(secret)}
}

// UserIDFromHeader extracts the reader id from an Authorization header
// value. Returns nil for anonymous readers (missing or unparseable tokens).
func (e *IdentityExtractor) UserIDFromHeader(header string) *uuid.UUID {
	if header == "" {
		return nil
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	subject, err := e.subjectFromToken(tokenString)
	if err != nil {
		return nil
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil
	}
	return &userID
}

// subjectFromToken returns the token's subject claim.
func (e *IdentityExtractor) subjectFromToken(tokenString string) (string, error) {
	if len(e.secret) == 0 {
		token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
		if err != nil {
			return "", err
		}
		return token.Claims.GetSubject()
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return e.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return token.Claims.GetSubject()
}
