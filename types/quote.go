package types

import (
	"encoding/json"
	"strconv"
)

// SwapInfo identifies the pool a route hop executes on.
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
}

type RouteHop struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  float64  `json:"percent"`
}

// Quote is the aggregator quote for a single leg. Amounts come over the wire
// as decimal strings.
type Quote struct {
	InputMint      string     `json:"inputMint"`
	OutputMint     string     `json:"outputMint"`
	InAmount       string     `json:"inAmount"`
	OutAmount      string     `json:"outAmount"`
	PriceImpactPct string     `json:"priceImpactPct"`
	SlippageBps    int        `json:"slippageBps"`
	RoutePlan      []RouteHop `json:"routePlan"`
	ContextSlot    uint64     `json:"contextSlot"`

	// Raw is the untouched quote body; swap-instruction requests echo it
	// back verbatim.
	Raw json.RawMessage `json:"-"`
}

func (q *Quote) InAmountUint() uint64 {
	v, _ := strconv.ParseUint(q.InAmount, 10, 64)
	return v
}

func (q *Quote) OutAmountUint() uint64 {
	v, _ := strconv.ParseUint(q.OutAmount, 10, 64)
	return v
}

func (q *Quote) PriceImpact() float64 {
	v, _ := strconv.ParseFloat(q.PriceImpactPct, 64)
	return v
}

// AccountMeta mirrors the aggregator's instruction account encoding.
type AccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// Instruction is one wire-encoded instruction; Data is base64.
type Instruction struct {
	ProgramID string        `json:"programId"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      string        `json:"data"`
}

// SwapInstructions is everything the aggregator hands back for one leg.
type SwapInstructions struct {
	ComputeBudgetInstructions   []Instruction `json:"computeBudgetInstructions"`
	SetupInstructions           []Instruction `json:"setupInstructions"`
	SwapInstruction             Instruction   `json:"swapInstruction"`
	CleanupInstruction          *Instruction  `json:"cleanupInstruction"`
	AddressLookupTableAddresses []string      `json:"addressLookupTableAddresses"`
	LastValidBlockHeight        uint64        `json:"lastValidBlockHeight"`
}

// ProgramIDs returns every program ID this leg touches, setup then swap then
// cleanup, duplicates included.
func (s *SwapInstructions) ProgramIDs() []string {
	ids := make([]string, 0, len(s.SetupInstructions)+2)
	for _, ix := range s.SetupInstructions {
		ids = append(ids, ix.ProgramID)
	}
	ids = append(ids, s.SwapInstruction.ProgramID)
	if s.CleanupInstruction != nil {
		ids = append(ids, s.CleanupInstruction.ProgramID)
	}
	return ids
}
