package trader

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"arbo/types"
)

// RiskLimits are the sizing and quality constraints one position must clear.
type RiskLimits struct {
	MaxActivePositions int
	// Largest share of a base token's total balance one position may lock.
	MaxPositionPct float64
	// Absolute USD cap per position; zero disables the check.
	MaxPositionUSD float64
	MinProfitUSD   float64
	// Optional bps floor; zero disables the check.
	MinProfitBps   int
	MaxSlippageBps int
}

type tokenBalance struct {
	total  uint64
	locked uint64
}

// RiskManager gates position opening and tracks locked balance per base
// token. Each token's ledger is independent: locking SOL never shrinks what
// USDC plans can spend.
type RiskManager struct {
	mu        sync.Mutex
	limits    RiskLimits
	balances  map[string]*tokenBalance
	positions map[string]*types.Position
	seq       int
}

func NewRiskManager(limits RiskLimits) *RiskManager {
	return &RiskManager{
		limits:    limits,
		balances:  make(map[string]*tokenBalance),
		positions: make(map[string]*types.Position),
	}
}

// SetBalance records the spendable balance of one base token.
func (r *RiskManager) SetBalance(mint string, total uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bal, ok := r.balances[mint]
	if !ok {
		r.balances[mint] = &tokenBalance{total: total}
		return
	}
	bal.total = total
}

func (r *RiskManager) Available(mint string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.availableLocked(mint)
}

func (r *RiskManager) availableLocked(mint string) uint64 {
	bal, ok := r.balances[mint]
	if !ok || bal.locked >= bal.total {
		return 0
	}
	return bal.total - bal.locked
}

func (r *RiskManager) activeCount() int {
	n := 0
	for _, p := range r.positions {
		if p.Status == types.PositionPending || p.Status == types.PositionExecuting {
			n++
		}
	}
	return n
}

// CanOpen checks every gate in order and names the first one that refuses.
func (r *RiskManager) CanOpen(baseMint string, amount uint64, amountUSD, profitUSD decimal.Decimal, profitBps int64, slippageBps int) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeCount() >= r.limits.MaxActivePositions {
		return false, "max_positions_reached"
	}
	if r.availableLocked(baseMint) < amount {
		return false, "insufficient_balance"
	}
	if bal := r.balances[baseMint]; bal != nil && r.limits.MaxPositionPct > 0 {
		if float64(amount) > float64(bal.total)*r.limits.MaxPositionPct {
			return false, "position_exceeds_pct_cap"
		}
	}
	if r.limits.MaxPositionUSD > 0 && amountUSD.GreaterThan(decimal.NewFromFloat(r.limits.MaxPositionUSD)) {
		return false, "position_exceeds_usd_cap"
	}
	if profitUSD.LessThan(decimal.NewFromFloat(r.limits.MinProfitUSD)) {
		return false, "profit_below_usd_floor"
	}
	if r.limits.MinProfitBps > 0 && profitBps < int64(r.limits.MinProfitBps) {
		return false, "profit_below_bps_floor"
	}
	if slippageBps > r.limits.MaxSlippageBps {
		return false, "slippage_above_cap"
	}
	return true, ""
}

// AddPosition locks the amount against the base token and opens a pending
// position.
func (r *RiskManager) AddPosition(baseMint string, amount uint64, profitBps int64) (*types.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bal, ok := r.balances[baseMint]
	if !ok {
		return nil, fmt.Errorf("no balance recorded for %s", baseMint)
	}
	if r.availableLocked(baseMint) < amount {
		return nil, fmt.Errorf("insufficient available balance for %s", baseMint)
	}
	bal.locked += amount

	r.seq++
	pos := &types.Position{
		ID:        fmt.Sprintf("pos-%d", r.seq),
		BaseMint:  baseMint,
		Amount:    amount,
		ProfitBps: profitBps,
		Status:    types.PositionPending,
		OpenedAt:  time.Now(),
	}
	r.positions[pos.ID] = pos
	return pos, nil
}

func (r *RiskManager) MarkExecuting(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pos, ok := r.positions[id]; ok {
		pos.Status = types.PositionExecuting
	}
}

// RemovePosition closes the position with the final status and releases its
// locked balance.
func (r *RiskManager) RemovePosition(id string, status types.PositionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.positions[id]
	if !ok {
		return
	}
	pos.Status = status

	if bal, ok := r.balances[pos.BaseMint]; ok {
		if bal.locked >= pos.Amount {
			bal.locked -= pos.Amount
		} else {
			bal.locked = 0
		}
	}
	delete(r.positions, id)
}
