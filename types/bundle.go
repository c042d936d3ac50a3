package types

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// PreparedBundle is a fully built, signed atomic transaction held for a
// later send. It pins the exact bytes that were simulated; the send path
// consumes it once.
type PreparedBundle struct {
	Opportunity     *ArbitrageOpportunity
	LegInstructions [2]*SwapInstructions
	RouteSignature  string

	// Lowest lastValidBlockHeight across both legs; the envelope dies at
	// this height.
	MinLastValidBlockHeight uint64

	Tx      *solana.Transaction
	RawSize int
	BuiltAt time.Time
	Meta    map[string]any
}

func NewPreparedBundle(opp *ArbitrageOpportunity, legs [2]*SwapInstructions, routeSig string, minHeight uint64, tx *solana.Transaction, rawSize int) (*PreparedBundle, error) {
	if opp == nil {
		return nil, fmt.Errorf("bundle needs an opportunity")
	}
	if legs[0] == nil || legs[1] == nil {
		return nil, fmt.Errorf("bundle needs instructions for both legs")
	}
	if routeSig == "" {
		return nil, fmt.Errorf("bundle needs a route signature")
	}
	if minHeight == 0 {
		return nil, fmt.Errorf("bundle needs a last valid block height")
	}
	if tx == nil || len(tx.Signatures) == 0 || tx.Signatures[0].IsZero() {
		return nil, fmt.Errorf("bundle needs a signed transaction")
	}
	return &PreparedBundle{
		Opportunity:             opp,
		LegInstructions:         legs,
		RouteSignature:          routeSig,
		MinLastValidBlockHeight: minHeight,
		Tx:                      tx,
		RawSize:                 rawSize,
		BuiltAt:                 time.Now(),
		Meta:                    make(map[string]any),
	}, nil
}
