package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpDigits = 6

var otpSpace = big.NewInt(1_000_000)

// GenerateSecureOTP generates a cryptographically secure 6-digit OTP.
// Leading zeros are kept so every code has exactly six digits.
func GenerateSecureOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
