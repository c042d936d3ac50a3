package sol

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"arbo/logger"
)

func init() {
	logger.SetConsoleEnabled(false)
	logger.InitLogs("sol_test")
}

func altAccountData(addresses ...solana.PublicKey) []byte {
	data := make([]byte, altHeaderLen)
	for _, addr := range addresses {
		data = append(data, addr.Bytes()...)
	}
	return data
}

func TestDecodeLookupTableRawFallback(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	// Zeroed header is not a valid typed state, so the raw layout applies.
	addresses, err := decodeLookupTable(altAccountData(a, b))
	if err != nil {
		t.Fatalf("decodeLookupTable failed: %v", err)
	}
	if len(addresses) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addresses))
	}
	if !addresses[0].Equals(a) || !addresses[1].Equals(b) {
		t.Errorf("addresses decoded out of order: %v", addresses)
	}
}

func TestDecodeLookupTableEmpty(t *testing.T) {
	addresses, err := decodeLookupTable(altAccountData())
	if err != nil {
		t.Fatalf("decodeLookupTable failed on empty table: %v", err)
	}
	if len(addresses) != 0 {
		t.Errorf("expected no addresses, got %d", len(addresses))
	}
}

func TestDecodeLookupTableUnrecognized(t *testing.T) {
	if _, err := decodeLookupTable([]byte{1, 2, 3}); !errors.Is(err, ErrUnrecognizedEncoding) {
		t.Fatalf("expected ErrUnrecognizedEncoding for short data, got %v", err)
	}

	// Trailing partial address is not a valid layout either.
	data := append(altAccountData(solana.NewWallet().PublicKey()), 0xFF)
	if _, err := decodeLookupTable(data); !errors.Is(err, ErrUnrecognizedEncoding) {
		t.Fatalf("expected ErrUnrecognizedEncoding for ragged data, got %v", err)
	}
}

func TestWalletSignAndLoad(t *testing.T) {
	w := NewWallet()

	loaded, err := LoadWallet(w.PrivateKeyBase58())
	if err != nil {
		t.Fatalf("LoadWallet failed: %v", err)
	}
	if !loaded.PublicKey().Equals(w.PublicKey()) {
		t.Errorf("round-tripped wallet key mismatch")
	}

	if _, err := LoadWallet(""); err == nil {
		t.Errorf("expected error for empty key")
	}
	if _, err := LoadWallet("not-base58-!!!"); err == nil {
		t.Errorf("expected error for malformed key")
	}
}
