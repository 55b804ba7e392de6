package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// AccessCodeLength is the fixed number of digits in a staff access code.
const AccessCodeLength = 6

// GenerateAccessCode returns a new random numeric access code. The code is
// handed to the admin exactly once; only its hash is stored.
func GenerateAccessCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < AccessCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate access code: %w", err)
	}
	return fmt.Sprintf("%0*d", AccessCodeLength, n), nil
}

// HashSecret produces a bcrypt hash for an access code or password.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// VerifySecret reports whether the secret matches the stored hash.
func VerifySecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
