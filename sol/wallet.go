package sol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Wallet holds the signing key for every transaction this process sends.
type Wallet struct {
	key solana.PrivateKey
}

// LoadWallet parses a base58-encoded private key, typically sourced from the
// WALLET_PRIVATE_KEY environment variable.
func LoadWallet(base58Key string) (*Wallet, error) {
	if base58Key == "" {
		return nil, fmt.Errorf("wallet private key is empty")
	}
	key, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("parse wallet private key: %w", err)
	}
	return &Wallet{key: key}, nil
}

// NewWallet generates a fresh keypair.
func NewWallet() *Wallet {
	key, _ := solana.NewRandomPrivateKey()
	return &Wallet{key: key}
}

func (w *Wallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

func (w *Wallet) PrivateKeyBase58() string {
	return w.key.String()
}

// Sign signs tx in place for every required signer this wallet covers.
func (w *Wallet) Sign(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}
