// internal/pkg/auth/pin.go
package auth

import (
	"fmt"
	"unicode"

	"github.com/your-org/pos-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// PINManager handles staff PIN operations
type PINManager struct {
	config *config.Config
}

// NewPINManager creates a new PIN manager
func NewPINManager(cfg *config.Config) *PINManager {
	return &PINManager{
		config: cfg,
	}
}

// HashPIN hashes a PIN using bcrypt
func (p *PINManager) HashPIN(pin string) (string, error) {
	if err := p.ValidatePIN(pin); err != nil {
		return "", fmt.Errorf("pin validation failed: %w", err)
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(pin), p.config.Security.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}

	return string(hashedBytes), nil
}

// VerifyPIN verifies a PIN against its hash
func (p *PINManager) VerifyPIN(pin, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
}

// ValidatePIN validates PIN shape: 4 to 6 digits, not all the same digit.
func (p *PINManager) ValidatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return fmt.Errorf("pin must be 4 to 6 digits long")
	}

	allSame := true
	for i, char := range pin {
		if !unicode.IsDigit(char) {
			return fmt.Errorf("pin must contain only digits")
		}
		if i > 0 && pin[i] != pin[0] {
			allSame = false
		}
	}
	if allSame {
		return fmt.Errorf("pin cannot repeat a single digit")
	}

	return nil
}
