package trader

import (
	"context"

	"arbo/logger"
	"arbo/types"
	"arbo/utils"
)

// InlineScan runs one pass over every configured plan: fund it, validate it,
// fetch its instructions, and (in simulate/live mode) hand it to the retry
// loop. funding maps a base mint to the amount committed per attempt; zero
// means the wallet cannot fund that plan this round.
func (t *Trader) InlineScan(ctx context.Context, plans []*types.ExecutionPlan, funding func(baseMint string) uint64) *types.ScanStats {
	stats := types.NewScanStats()

	for _, plan := range plans {
		if ctx.Err() != nil {
			break
		}

		amount := funding(plan.BaseMint())
		if amount == 0 {
			stats.Skip(types.SkipZeroBalance)
			continue
		}
		stats.HadFundablePlans = true

		stats.DidAnyQuoteCall = true
		opp, reason := t.finder.Validate(ctx, plan, amount)
		if reason != "" {
			stats.Skip(reason)
			continue
		}

		stats.Candidates++
		stats.DidCandidateFlow = true

		if t.mode == ModeScan {
			// Scan mode never builds; it only reports what would trade.
			logger.TradeLogger.Info("Candidate found",
				"base", utils.ShortMint(plan.BaseMint()),
				"intermediate", utils.ShortMint(plan.IntermediateMint()),
				"dex1", opp.Venues.Dex1, "dex2", opp.Venues.Dex2,
				"profit_bps", opp.ProfitBps())
			stats.Successes++
			continue
		}

		// Fetch both instruction sets back to back while the quotes are hot.
		var legs [2]*types.SwapInstructions
		signer := t.builder.signer.PublicKey().String()
		fetchErr := t.finder.quotes.Limiter().Burst(func() error {
			for i := range legs {
				resp, err := t.finder.quotes.GetSwapInstructions(ctx, opp.Quotes[i], signer, plan.UseSharedAccounts)
				if err != nil {
					return err
				}
				legs[i] = resp
			}
			return nil
		})
		if fetchErr != nil {
			logger.TradeLogger.Warn("Swap instruction fetch failed", "err", fetchErr)
			stats.Skip(types.SkipSwapInstructionsFailed)
			continue
		}

		// Known-oversized routes are skipped before any build work.
		routeSig := RouteSignature(plan, opp.Venues, legs)
		if hit, matched, ttl := t.cache.IsCached(routeSig, FailureSizeOverflow); hit && matched == FailureSizeOverflow {
			logger.TradeLogger.Info("Route cached as oversized, skipping",
				"route", routeSig, "ttl_remaining", ttl)
			stats.Skip(types.SkipCacheHitSize)
			continue
		}

		t.RunOpportunity(ctx, plan, amount, opp, legs, stats)
	}

	if t.journal != nil {
		t.journal.RecordSkips(stats)
	}
	if removed := t.cache.Sweep(); removed > 0 {
		logger.TradeLogger.Info("Negative cache swept", "removed", removed, "remaining", t.cache.Len())
	}

	logger.TradeLogger.Info("Scan pass finished",
		"candidates", stats.Candidates,
		"successes", stats.Successes,
		"errors", stats.Errors,
		"skips", stats.TotalSkips(),
		"had_fundable_plans", stats.HadFundablePlans,
		"did_any_quote_call", stats.DidAnyQuoteCall,
		"did_candidate_flow", stats.DidCandidateFlow)
	return stats
}
