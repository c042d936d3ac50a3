package trader

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"arbo/config"
	"arbo/logger"
	"arbo/ratelimit"
	"arbo/types"
	"arbo/utils"
)

// QuoteProvider is the aggregator surface the validator and builder consume.
type QuoteProvider interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int, onlyDirectRoutes bool) (*types.Quote, error)
	GetSwapInstructions(ctx context.Context, quote *types.Quote, signer string, useSharedAccounts bool) (*types.SwapInstructions, error)
	Limiter() *ratelimit.Limiter
}

// Thresholds are the live profit/size knobs a validation pass runs under.
type Thresholds struct {
	SlippageBps  int
	MinProfitBps int
	MinProfitUSD float64
	SOLPriceUSD  float64
}

// Finder turns a plan plus a funding amount into a validated opportunity by
// quoting both legs and applying the hard gates in order. Every reject maps
// to exactly one skip reason.
type Finder struct {
	quotes QuoteProvider
	thr    Thresholds
}

func NewFinder(quotes QuoteProvider, thr Thresholds) *Finder {
	return &Finder{quotes: quotes, thr: thr}
}

func (f *Finder) Thresholds() Thresholds { return f.thr }

// Validate quotes the two legs back to back (leg 2 funded by leg 1's output,
// no inter-leg pacing) and gates the result. On reject it returns a nil
// opportunity and the skip reason.
func (f *Finder) Validate(ctx context.Context, plan *types.ExecutionPlan, amount uint64) (*types.ArbitrageOpportunity, types.SkipReason) {
	var q1, q2 *types.Quote
	var err1, err2 error

	_ = f.quotes.Limiter().Burst(func() error {
		q1, err1 = f.quotes.GetQuote(ctx, plan.Legs[0].FromMint, plan.Legs[0].ToMint, amount, f.thr.SlippageBps, true)
		if err1 != nil || q1 == nil || q1.OutAmountUint() == 0 {
			return nil
		}
		q2, err2 = f.quotes.GetQuote(ctx, plan.Legs[1].FromMint, plan.Legs[1].ToMint, q1.OutAmountUint(), f.thr.SlippageBps, true)
		return nil
	})

	// Gate 1: both quotes present with non-zero output.
	if err1 != nil {
		return nil, classifyQuoteErr(err1, 1)
	}
	if q1 == nil || q1.OutAmountUint() == 0 {
		return nil, types.SkipNoQuoteLeg1
	}
	if err2 != nil {
		return nil, classifyQuoteErr(err2, 2)
	}
	if q2 == nil || q2.OutAmountUint() == 0 {
		return nil, types.SkipNoQuoteLeg2
	}

	// Gate 2: exactly one hop per leg, mints lining up.
	if !enforce1Hop(q1, plan.Legs[0]) {
		return nil, types.SkipMultiHopLeg1
	}
	if !enforce1Hop(q2, plan.Legs[1]) {
		return nil, types.SkipMultiHopLeg2
	}

	// Gates 3+4: both venues resolved, and distinct.
	dex1, ok1 := utils.VenueName(q1.RoutePlan[0].SwapInfo.AmmKey)
	if !ok1 {
		return nil, types.SkipUnknownDex1
	}
	dex2, ok2 := utils.VenueName(q2.RoutePlan[0].SwapInfo.AmmKey)
	if !ok2 {
		return nil, types.SkipUnknownDex2
	}
	if dex1 == dex2 {
		return nil, types.SkipSameDex
	}
	venues := types.ResolvedVenues{Dex1: dex1, Dex2: dex2}

	// Gate 5: per-leg price impact ceiling.
	if q1.PriceImpact() > config.MAX_PRICE_IMPACT_PCT || q2.PriceImpact() > config.MAX_PRICE_IMPACT_PCT {
		return nil, types.SkipHighImpact
	}

	// Gate 6: profit thresholds.
	opp := &types.ArbitrageOpportunity{
		Plan:             plan,
		Venues:           venues,
		Quotes:           [2]*types.Quote{q1, q2},
		InitialAmount:    amount,
		FinalAmount:      q2.OutAmountUint(),
		PriceImpactTotal: q1.PriceImpact() + q2.PriceImpact(),
		Timestamp:        time.Now(),
	}
	if reason := f.profitReject(opp); reason != "" {
		return nil, reason
	}

	logger.TradeLogger.Info("Opportunity validated",
		"base", utils.ShortMint(plan.BaseMint()),
		"intermediate", utils.ShortMint(plan.IntermediateMint()),
		"dex1", dex1, "dex2", dex2,
		"profit_bps", opp.ProfitBps(),
		"profit_usd", opp.ProfitUSD(f.thr.SOLPriceUSD),
	)
	return opp, ""
}

// Revalidate re-applies the current thresholds to an opportunity computed
// earlier, returning the skip reason that now disqualifies it, if any.
func (f *Finder) Revalidate(opp *types.ArbitrageOpportunity) types.SkipReason {
	if !opp.Venues.CrossVenue() {
		return types.SkipSameDex
	}
	return f.profitReject(opp)
}

func (f *Finder) profitReject(opp *types.ArbitrageOpportunity) types.SkipReason {
	if opp.ProfitUSD(f.thr.SOLPriceUSD).LessThan(decimal.NewFromFloat(f.thr.MinProfitUSD)) {
		return types.SkipLowProfitUSD
	}
	if f.thr.MinProfitBps > 0 && opp.ProfitBps() < int64(f.thr.MinProfitBps) {
		return types.SkipLowProfitBps
	}
	return ""
}

// enforce1Hop accepts a quote only when it routes through exactly one hop
// whose mints line up with the leg. Hops without explicit mints fall back to
// the quote-level pair.
func enforce1Hop(q *types.Quote, leg types.ExecutionLeg) bool {
	if len(q.RoutePlan) != 1 {
		return false
	}
	hop := q.RoutePlan[0].SwapInfo
	if hop.InputMint != "" || hop.OutputMint != "" {
		return hop.InputMint == leg.FromMint && hop.OutputMint == leg.ToMint
	}
	return q.InputMint == leg.FromMint && q.OutputMint == leg.ToMint
}

func classifyQuoteErr(err error, leg int) types.SkipReason {
	timedOut := errors.Is(err, context.DeadlineExceeded)
	switch {
	case leg == 1 && timedOut:
		return types.SkipTimeoutLeg1
	case leg == 1:
		return types.SkipNoQuoteLeg1
	case timedOut:
		return types.SkipTimeoutLeg2
	default:
		return types.SkipNoQuoteLeg2
	}
}
