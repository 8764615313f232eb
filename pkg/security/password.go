package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/angelmondragon/fleetstock-backend/pkg/config"
)

// DefaultPinCost matches the cost every existing admin hash was written with.
const DefaultPinCost = 10

// OTPLength is the number of digits in an emailed one-time code.
const OTPLength = 6

var pinPattern = regexp.MustCompile(`^\d{6}$`)

// ErrInvalidHash signals a stored hash bcrypt cannot parse.
var ErrInvalidHash = errors.New("invalid bcrypt hash")

// IsValidPin reports whether pin is exactly six ASCII digits.
func IsValidPin(pin string) bool {
	return pinPattern.MatchString(pin)
}

// HashPin returns a bcrypt hash of the PIN at the configured cost.
func HashPin(pin string, cfg config.SecurityConfig) (string, error) {
	if pin == "" {
		return "", fmt.Errorf("pin cannot be empty")
	}
	return hashSecret(pin, costFromConfig(cfg))
}

// VerifyPin returns true when pin matches the stored hash.
func VerifyPin(pin, encoded string) (bool, error) {
	return verifySecret(pin, encoded)
}

// HashOTP hashes a one-time code. OTPs share the PIN cost.
func HashOTP(code string, cfg config.SecurityConfig) (string, error) {
	if code == "" {
		return "", fmt.Errorf("otp cannot be empty")
	}
	return hashSecret(code, costFromConfig(cfg))
}

// VerifyOTP returns true when code matches the stored hash.
func VerifyOTP(code, encoded string) (bool, error) {
	return verifySecret(code, encoded)
}

// GenerateOTP produces a zero-padded numeric code of OTPLength digits.
func GenerateOTP() (string, error) {
	upper := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

func hashSecret(secret string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

func verifySecret(secret, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrHashTooShort):
		return false, ErrInvalidHash
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
}

func costFromConfig(cfg config.SecurityConfig) int {
	cost := cfg.PinBcryptCost
	if cost == 0 {
		return DefaultPinCost
	}
	if cost < bcrypt.MinCost {
		return bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return cost
}
