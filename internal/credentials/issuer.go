// Package credentials issues the two secrets handed to a table when a
// session opens: a 4-digit PIN the staff read out to the party, and a
// signed session token embedded in the table-device link. Both are bound
// to the session that issued them, so stale links from a previous seating
// stop working the moment the table is reopened.
package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Issuer creates and verifies table session credentials.
type Issuer struct {
	secret []byte
}

// NewIssuer creates an Issuer signing tokens with the given secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// IssuePIN returns a fresh 4-digit numeric PIN.
func (i *Issuer) IssuePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate pin: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// IssueSessionToken returns a signed token bound to the table and the
// moment the session opened.
func (i *Issuer) IssueSessionToken(tableNumber int, issuedAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"table": tableNumber,
		"iat":   issuedAt.Unix(),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken reports whether tokenString is a valid token for the
// given table and session open time. A token issued for an earlier session
// of the same table fails the issuedAt check.
func (i *Issuer) VerifySessionToken(tokenString string, tableNumber int, issuedAt time.Time) bool {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	table, ok := claims["table"].(float64)
	if !ok || int(table) != tableNumber {
		return false
	}

	iat, ok := claims["iat"].(float64)
	if !ok || int64(iat) != issuedAt.Unix() {
		return false
	}

	return true
}

// VerifyPIN compares a submitted PIN with the stored one in constant time.
func VerifyPIN(stored, submitted string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
