// Package otp generates the 6-digit one-time codes that gate password resets
// and account-detail changes. Only the SHA-256 digest of a code is persisted.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

const (
	Length = 6
	TTL    = 10 * time.Minute
)

var upper = big.NewInt(900000)

// Generate returns a uniformly random code in [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func Hash(code string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(code)))
}

// Matches reports whether code hashes to storedHash and expiresAt is after now.
// A missing hash or expiry never matches.
func Matches(storedHash *string, expiresAt *time.Time, code string, now time.Time) bool {
	if storedHash == nil || expiresAt == nil || code == "" {
		return false
	}
	if !now.Before(*expiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*storedHash), []byte(Hash(code))) == 1
}
