package types

import "time"

// ExecutionRecord is one attempt outcome persisted to the journal.
type ExecutionRecord struct {
	Timestamp        time.Time `ch:"timestamp"`
	Mode             string    `ch:"mode"`
	BaseMint         string    `ch:"baseMint"`
	IntermediateMint string    `ch:"intermediateMint"`
	Dex1             string    `ch:"dex1"`
	Dex2             string    `ch:"dex2"`
	InitialAmount    uint64    `ch:"initialAmount"`
	FinalAmount      uint64    `ch:"finalAmount"`
	ProfitBps        int64     `ch:"profitBps"`
	ProfitUSD        float64   `ch:"profitUsd"`
	RawSize          uint32    `ch:"rawSize"`
	Signature        string    `ch:"signature"`
	Outcome          string    `ch:"outcome"` // simulated, confirmed, skipped, failed
	Detail           string    `ch:"detail"`
}

// SkipRecord is one reason tally from a scan round.
type SkipRecord struct {
	Timestamp time.Time `ch:"timestamp"`
	Reason    string    `ch:"reason"`
	Count     uint64    `ch:"count"`
}
