package util

import "fmt"

// maxAmount caps single amounts at ten million fiat units.
const maxAmount = 10000000

// ValidateAmount checks that a fiat amount is positive and below the cap.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %f", amount)
	}
	if amount >= maxAmount {
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ValidateWalletAddress checks basic shape of a wallet address. Addresses are
// opaque strings here; only emptiness and length are enforced.
func ValidateWalletAddress(addr string) error {
	if addr == "" {
		return nil
	}
	if len(addr) < 16 || len(addr) > 128 {
		return fmt.Errorf("wallet address length out of range: %d", len(addr))
	}
	return nil
}
