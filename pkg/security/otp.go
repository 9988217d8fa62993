package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	minOTPDigits = 4
	maxOTPDigits = 10
)

// GenerateOTP produces a zero-padded numeric one-time code of the requested
// length. Codes come from crypto/rand so they cannot be predicted from prior
// codes, although they are consumed single-use rather than treated as
// long-lived secrets.
func GenerateOTP(digits int) (string, error) {
	if digits < minOTPDigits || digits > maxOTPDigits {
		return "", fmt.Errorf("otp digits must be between %d and %d", minOTPDigits, maxOTPDigits)
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// IsNumericCode reports whether candidate looks like a code of the given
// length, letting handlers reject garbage before touching the store.
func IsNumericCode(candidate string, digits int) bool {
	if len(candidate) != digits {
		return false
	}
	return strings.IndexFunc(candidate, func(r rune) bool {
		return r < '0' || r > '9'
	}) == -1
}
