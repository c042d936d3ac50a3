package types

import (
	"time"

	"github.com/shopspring/decimal"

	"arbo/config"
)

// ArbitrageOpportunity is a validated round trip with live quotes attached.
type ArbitrageOpportunity struct {
	Plan   *ExecutionPlan
	Venues ResolvedVenues
	Quotes [2]*Quote

	// Base-unit amounts of the base mint, before and after the cycle.
	InitialAmount uint64
	FinalAmount   uint64

	PriceImpactTotal float64
	Timestamp        time.Time
}

// ProfitBps is the round-trip return in basis points, truncated toward zero.
func (o *ArbitrageOpportunity) ProfitBps() int64 {
	if o.InitialAmount == 0 {
		return 0
	}
	return (int64(o.FinalAmount) - int64(o.InitialAmount)) * 10000 / int64(o.InitialAmount)
}

// ProfitUSD estimates the dollar profit of the cycle. Only SOL and USDC base
// mints have a defined estimate; every other base mint yields zero.
func (o *ArbitrageOpportunity) ProfitUSD(solPriceUSD float64) decimal.Decimal {
	diff := decimal.NewFromInt(int64(o.FinalAmount) - int64(o.InitialAmount))
	switch o.Plan.BaseMint() {
	case config.SOL_MINT:
		return diff.Div(decimal.NewFromInt(config.SOL_DECIMALS)).
			Mul(decimal.NewFromFloat(solPriceUSD))
	case config.USDC_MINT:
		return diff.Div(decimal.NewFromInt(config.USDC_DECIMALS))
	default:
		return decimal.Zero
	}
}

// IsValid applies the profit thresholds. The USD floor always applies; the
// bps floor applies only when configured positive.
func (o *ArbitrageOpportunity) IsValid(minProfitBps int, minProfitUSD float64, solPriceUSD float64) bool {
	if o.ProfitUSD(solPriceUSD).LessThan(decimal.NewFromFloat(minProfitUSD)) {
		return false
	}
	if minProfitBps > 0 && o.ProfitBps() < int64(minProfitBps) {
		return false
	}
	return true
}
