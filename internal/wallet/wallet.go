// Package wallet generates ed25519 keypairs in the Solana address format.
// Keys exist only for fee-bucket bookkeeping; nothing here signs or sends
// transactions.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Keypair is one generated wallet. Address is the base58 public key;
// Secret is the base58 64-byte expanded key (seed || public).
type Keypair struct {
	Address string
	Secret  string
}

// Generate creates a new random keypair.
func Generate() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}

	if !IsOnCurve(pub) {
		return nil, fmt.Errorf("generated public key is not on the curve")
	}

	return &Keypair{
		Address: base58.Encode(pub),
		Secret:  base58.Encode(priv),
	}, nil
}

// IsOnCurve reports whether a 32-byte point is a valid ed25519 curve point.
// Program-derived addresses are intentionally off-curve; wallet addresses
// must be on it.
func IsOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// ValidateAddress checks that an address decodes to an on-curve public key.
func ValidateAddress(address string) error {
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("address is %d bytes, want 32", len(raw))
	}
	if !IsOnCurve(raw) {
		return fmt.Errorf("address is not an on-curve public key")
	}
	return nil
}
