package types

import "time"

type PositionStatus string

const (
	PositionPending   PositionStatus = "pending"
	PositionExecuting PositionStatus = "executing"
	PositionCompleted PositionStatus = "completed"
	PositionFailed    PositionStatus = "failed"
)

// Position is one in-flight arbitrage commitment of base-token balance.
type Position struct {
	ID        string
	BaseMint  string
	Amount    uint64 // base units locked
	ProfitBps int64
	Status    PositionStatus
	OpenedAt  time.Time
}
