// Package rates converts fiat amounts into crypto quantities at fixed
// per-asset rates. It stands in for a price oracle so the ledger logic
// stays untouched when a real feed replaces it.
package rates

import "github.com/MukamaJ-2/crypto-vault/internal/models"

// Fixed USD rates per asset unit.
const (
	BTCUSD = 50000.0
	SolUSD = 100.0
)

// Rate returns the fiat price of one unit of asset, or 0 for an unknown asset.
func Rate(asset models.CryptoType) float64 {
	switch asset {
	case models.CryptoBTC:
		return BTCUSD
	case models.CryptoSolana:
		return SolUSD
	}
	return 0
}

// Convert returns the crypto quantity that amount (fiat) buys at the fixed
// rate. Unknown assets convert to quantity 0; callers validate the asset
// before money moves.
func Convert(amount float64, asset models.CryptoType) float64 {
	r := Rate(asset)
	if r == 0 {
		return 0
	}
	return amount / r
}
