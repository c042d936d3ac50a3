package sol

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"

	"arbo/logger"
)

// ErrUnrecognizedEncoding means an account claiming to be a lookup table
// could not be decoded by any known layout.
var ErrUnrecognizedEncoding = errors.New("unrecognized address lookup table encoding")

// Lookup table account layout: 56-byte header, then 32-byte addresses.
const altHeaderLen = 56

// ResolveLookupTables fetches and decodes every referenced lookup table.
// A single unresolvable ref fails the whole resolution; building with a
// partial address set would silently shift account indexes.
func (c *Client) ResolveLookupTables(ctx context.Context, refs []string) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(refs))

	for _, ref := range refs {
		key, err := solana.PublicKeyFromBase58(ref)
		if err != nil {
			return nil, fmt.Errorf("bad lookup table address %q: %w", ref, err)
		}

		info, err := c.rpc.GetAccountInfo(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch lookup table %s: %w", ref, err)
		}
		if info == nil || info.Value == nil {
			return nil, fmt.Errorf("lookup table %s does not exist", ref)
		}

		data := info.Value.Data.GetBinary()
		addresses, err := decodeLookupTable(data)
		if err != nil {
			return nil, fmt.Errorf("decode lookup table %s: %w", ref, err)
		}

		tables[key] = addresses
	}

	return tables, nil
}

// decodeLookupTable tries the canonical state decoder first, then the raw
// layout. The raw path covers nodes that return state the typed decoder
// rejects (e.g. deactivated tables).
func decodeLookupTable(data []byte) (solana.PublicKeySlice, error) {
	// The typed decoder truncates a ragged trailing address instead of
	// erroring, so the length has to be checked before either path.
	if len(data) < altHeaderLen || (len(data)-altHeaderLen)%32 != 0 {
		return nil, ErrUnrecognizedEncoding
	}

	state, err := addresslookuptable.DecodeAddressLookupTableState(data)
	if err == nil && len(state.Addresses) > 0 {
		return state.Addresses, nil
	}
	if err != nil {
		logger.RPCLogger.Warn("Typed lookup table decode failed, trying raw layout", "err", err)
	}

	return decodeLookupTableRaw(data)
}

func decodeLookupTableRaw(data []byte) (solana.PublicKeySlice, error) {
	body := data[altHeaderLen:]
	if len(body)%32 != 0 {
		return nil, ErrUnrecognizedEncoding
	}

	dec := bin.NewBinDecoder(body)
	addresses := make(solana.PublicKeySlice, 0, len(body)/32)
	for dec.Remaining() >= 32 {
		raw, err := dec.ReadNBytes(32)
		if err != nil {
			return nil, ErrUnrecognizedEncoding
		}
		addresses = append(addresses, solana.PublicKeyFromBytes(raw))
	}
	return addresses, nil
}
