package trader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"arbo/config"
	"arbo/logger"
	"arbo/types"
	"arbo/utils"
)

type Mode string

const (
	ModeScan     Mode = "scan"
	ModeSimulate Mode = "simulate"
	ModeLive     Mode = "live"
)

// ErrTradeInProgress is returned when a second execution is attempted while
// one is already in flight. Concurrent trades are rejected, never queued.
var ErrTradeInProgress = errors.New("a trade is already in progress")

const simLogTailLines = 20

// sharedRouteErrCode is the on-chain custom error the aggregator's shared
// accounts router raises when a venue rejects the route at runtime.
const sharedRouteErrCode = "6024"

// Journal persists attempt outcomes; writes are best effort and must never
// block the trade path.
type Journal interface {
	RecordExecution(rec *types.ExecutionRecord)
	RecordSkips(stats *types.ScanStats)
}

// Trader drives validated opportunities through simulation, expiry checks
// and submission, one at a time.
type Trader struct {
	mode    Mode
	finder  *Finder
	builder *Builder
	ledger  LedgerClient
	cache   *NegativeCache
	risk    *RiskManager
	journal Journal // nil disables journaling

	maxRetries     int
	headroomBlocks uint64

	inFlight atomic.Bool
	seenSigs *utils.SeenCache
}

func NewTrader(mode Mode, finder *Finder, builder *Builder, ledger LedgerClient, cache *NegativeCache, risk *RiskManager, journal Journal, maxRetries int) *Trader {
	return &Trader{
		mode:           mode,
		finder:         finder,
		builder:        builder,
		ledger:         ledger,
		cache:          cache,
		risk:           risk,
		journal:        journal,
		maxRetries:     maxRetries,
		headroomBlocks: config.EXPIRY_REBUILD_HEADROOM_BLOCKS,
		seenSigs:       utils.NewSeenCache(),
	}
}

func (t *Trader) Mode() Mode { return t.mode }

// ExecuteOpportunity builds and runs one opportunity end to end. legs may
// carry pre-fetched instruction sets. Returns the transaction signature when
// one was obtained, a skip reason for classified rejects, and an error for
// hard failures; a send/confirm failure carries both.
func (t *Trader) ExecuteOpportunity(ctx context.Context, opp *types.ArbitrageOpportunity, legs [2]*types.SwapInstructions) (solana.Signature, types.SkipReason, error) {
	if t.mode != ModeLive && t.mode != ModeSimulate {
		return solana.Signature{}, "", fmt.Errorf("mode %q cannot execute opportunities", t.mode)
	}

	if !t.inFlight.CompareAndSwap(false, true) {
		return solana.Signature{}, "", ErrTradeInProgress
	}
	defer t.inFlight.Store(false)

	thr := t.finder.Thresholds()
	profitUSD := opp.ProfitUSD(thr.SOLPriceUSD)
	amountUSD := positionUSD(opp, thr.SOLPriceUSD)
	if ok, reason := t.risk.CanOpen(opp.Plan.BaseMint(), opp.InitialAmount, amountUSD, profitUSD, opp.ProfitBps(), thr.SlippageBps); !ok {
		return solana.Signature{}, "", fmt.Errorf("risk gate refused: %s", reason)
	}
	pos, err := t.risk.AddPosition(opp.Plan.BaseMint(), opp.InitialAmount, opp.ProfitBps())
	if err != nil {
		return solana.Signature{}, "", err
	}
	status := types.PositionFailed
	defer func() { t.risk.RemovePosition(pos.ID, status) }()

	bundle, err := t.builder.Build(ctx, opp, legs)
	if err != nil {
		return solana.Signature{}, t.classifyBuildErr(err), err
	}
	t.risk.MarkExecuting(pos.ID)

	sig, skip, err := t.runGate(ctx, bundle, false)
	if err == nil && skip == "" {
		status = types.PositionCompleted
	}
	return sig, skip, err
}

// ExecutePreparedBundle consumes a bundle built earlier. The only rebuild
// permitted is the expiry-headroom rebuild: when the pinned bytes are about
// to outlive their blockhash, the bundle is rebuilt once with fresh
// instructions before the usual simulate/send/confirm flow.
func (t *Trader) ExecutePreparedBundle(ctx context.Context, bundle *types.PreparedBundle) (solana.Signature, types.SkipReason, error) {
	if t.mode != ModeLive && t.mode != ModeSimulate {
		return solana.Signature{}, "", fmt.Errorf("mode %q cannot execute bundles", t.mode)
	}

	if !t.inFlight.CompareAndSwap(false, true) {
		return solana.Signature{}, "", ErrTradeInProgress
	}
	defer t.inFlight.Store(false)

	if bundle.MinLastValidBlockHeight > 0 {
		height, err := t.ledger.CurrentBlockHeight(ctx)
		if err != nil {
			return solana.Signature{}, "", fmt.Errorf("expiry check: %w", err)
		}
		if height+t.headroomBlocks >= bundle.MinLastValidBlockHeight {
			logger.TradeLogger.Info("Prepared bundle near expiry, rebuilding",
				"height", height, "min_last_valid", bundle.MinLastValidBlockHeight, "headroom", t.headroomBlocks)
			rebuilt, err := t.builder.Build(ctx, bundle.Opportunity, [2]*types.SwapInstructions{})
			if err != nil {
				return solana.Signature{}, t.classifyBuildErr(err), err
			}
			bundle = rebuilt
		}
	}

	return t.runGate(ctx, bundle, true)
}

// runGate is the Built -> Simulated -> Expired-check -> Sent -> Confirmed
// state machine. Simulation is mandatory and a missing result is a hard
// failure, never treated as success.
func (t *Trader) runGate(ctx context.Context, bundle *types.PreparedBundle, prepared bool) (solana.Signature, types.SkipReason, error) {
	opp := bundle.Opportunity

	sim, err := t.ledger.Simulate(ctx, bundle.Tx)
	if err != nil {
		t.record(opp, bundle, solana.Signature{}, "failed", err.Error())
		return solana.Signature{}, types.SkipSimRPCNone, fmt.Errorf("simulation call failed: %w", err)
	}
	if sim == nil {
		t.record(opp, bundle, solana.Signature{}, "failed", "simulation returned no result")
		return solana.Signature{}, types.SkipSimInvalidType, fmt.Errorf("simulation returned no result")
	}

	if sim.Err != nil {
		errStr := fmt.Sprintf("%v", sim.Err)
		if opp.Plan.UseSharedAccounts && strings.Contains(errStr, sharedRouteErrCode) && hasSharedRouteLog(sim.Logs) {
			t.cache.Cache(bundle.RouteSignature, FailureRuntimeVenue)
			logger.TradeLogger.Warn("Shared-accounts route rejected at runtime, route cached", "route", bundle.RouteSignature)
			t.record(opp, bundle, solana.Signature{}, "skipped", "shared accounts route failure")
			return solana.Signature{}, types.SkipSimErr, nil
		}
		tail := logTail(sim.Logs, simLogTailLines)
		t.record(opp, bundle, solana.Signature{}, "failed", errStr)
		return solana.Signature{}, types.SkipSimErr, fmt.Errorf("simulation error: %s\nlog tail:\n%s", errStr, strings.Join(tail, "\n"))
	}

	logger.TradeLogger.Info("Simulation passed",
		"units_consumed", sim.UnitsConsumed, "raw_size", bundle.RawSize, "prepared", prepared)

	if t.mode == ModeSimulate {
		t.record(opp, bundle, solana.Signature{}, "simulated", "")
		return solana.Signature{}, "", nil
	}

	// Expiry check: never submit past the validity bound; the quotes behind
	// the envelope are stale by definition at that point.
	if bundle.MinLastValidBlockHeight > 0 {
		height, err := t.ledger.CurrentBlockHeight(ctx)
		if err != nil {
			return solana.Signature{}, "", fmt.Errorf("expiry check: %w", err)
		}
		if height >= bundle.MinLastValidBlockHeight {
			t.record(opp, bundle, solana.Signature{}, "skipped", "expired before send")
			return solana.Signature{}, "", fmt.Errorf("bundle expired: height %d >= min last valid %d", height, bundle.MinLastValidBlockHeight)
		}
	}

	sig, err := t.ledger.Send(ctx, bundle.Tx)
	if err != nil {
		t.record(opp, bundle, sig, "failed", err.Error())
		return sig, "", fmt.Errorf("send failed: %w", err)
	}

	if err := t.ledger.Confirm(ctx, sig); err != nil {
		// The signature is still surfaced so the caller can inspect
		// on-chain state after a local failure.
		t.record(opp, bundle, sig, "failed", err.Error())
		return sig, "", fmt.Errorf("confirm failed for %s: %w", sig, err)
	}

	logger.TradeLogger.Info("Trade confirmed",
		"sig", sig, "profit_bps", opp.ProfitBps(),
		"dex1", opp.Venues.Dex1, "dex2", opp.Venues.Dex2)
	t.record(opp, bundle, sig, "confirmed", "")
	return sig, "", nil
}

// RunOpportunity is the retry/recheck loop for one plan, bounded by
// successes rather than attempts. The first iteration may reuse an
// opportunity the caller already computed (still re-checked against current
// thresholds); later iterations re-derive it with fresh burst quotes. Any
// failure stops the loop.
func (t *Trader) RunOpportunity(ctx context.Context, plan *types.ExecutionPlan, amount uint64, initial *types.ArbitrageOpportunity, initialLegs [2]*types.SwapInstructions, stats *types.ScanStats) int {
	successes := 0
	first := true

	for successes < t.maxRetries {
		var opp *types.ArbitrageOpportunity
		var legs [2]*types.SwapInstructions

		if first && initial != nil {
			// Zero-recheck reuse, but stale profitability never bypasses
			// the current thresholds.
			if reason := t.finder.Revalidate(initial); reason != "" {
				stats.Skip(reason)
				break
			}
			opp, legs = initial, initialLegs
		} else {
			var reason types.SkipReason
			opp, reason = t.finder.Validate(ctx, plan, amount)
			if reason != "" {
				stats.Skip(reason)
				break
			}
		}
		first = false

		_, skip, err := t.ExecuteOpportunity(ctx, opp, legs)
		if skip != "" {
			stats.Skip(skip)
			break
		}
		if err != nil {
			logger.TradeLogger.Warn("Execution attempt failed, stopping retries", "err", err)
			if errors.Is(err, context.DeadlineExceeded) {
				stats.Skip(types.SkipTimeoutOther)
			} else {
				stats.Errors++
			}
			break
		}
		successes++
		stats.Successes++
	}
	return successes
}

func (t *Trader) classifyBuildErr(err error) types.SkipReason {
	var failure *BuildFailure
	if !errors.As(err, &failure) {
		return types.SkipBuildFailed
	}
	if failure.Reason == FailReasonSizeOverflow {
		if cached, _ := failure.Meta["cached"].(bool); cached {
			return types.SkipCacheHitSize
		}
		// Fresh overflow: the builder only detects, the caller caches.
		if sig, _ := failure.Meta["route_signature"].(string); sig != "" {
			t.cache.Cache(sig, FailureSizeOverflow)
		}
		return types.SkipSizeOverflow
	}
	return types.SkipBuildFailed
}

func (t *Trader) record(opp *types.ArbitrageOpportunity, bundle *types.PreparedBundle, sig solana.Signature, outcome, detail string) {
	if t.journal == nil {
		return
	}
	sigStr := ""
	if !sig.IsZero() {
		sigStr = sig.String()
		if t.seenSigs.Has(sigStr) {
			return
		}
		t.seenSigs.Add(sigStr)
	}
	thr := t.finder.Thresholds()
	profitUSD, _ := opp.ProfitUSD(thr.SOLPriceUSD).Float64()
	t.journal.RecordExecution(&types.ExecutionRecord{
		Timestamp:        time.Now(),
		Mode:             string(t.mode),
		BaseMint:         opp.Plan.BaseMint(),
		IntermediateMint: opp.Plan.IntermediateMint(),
		Dex1:             opp.Venues.Dex1,
		Dex2:             opp.Venues.Dex2,
		InitialAmount:    opp.InitialAmount,
		FinalAmount:      opp.FinalAmount,
		ProfitBps:        opp.ProfitBps(),
		ProfitUSD:        profitUSD,
		RawSize:          uint32(bundle.RawSize),
		Signature:        sigStr,
		Outcome:          outcome,
		Detail:           detail,
	})
}

func hasSharedRouteLog(logs []string) bool {
	for _, line := range logs {
		if strings.Contains(line, utils.JUPITER_SHARED_ROUTE_LOG) {
			return true
		}
	}
	return false
}

func logTail(logs []string, n int) []string {
	if len(logs) <= n {
		return logs
	}
	return logs[len(logs)-n:]
}

// positionUSD estimates the USD size of the position for the risk gate.
// Like the profit estimate, only the two reference base mints convert.
func positionUSD(opp *types.ArbitrageOpportunity, solPriceUSD float64) decimal.Decimal {
	amount := decimal.NewFromInt(int64(opp.InitialAmount))
	switch opp.Plan.BaseMint() {
	case config.SOL_MINT:
		return amount.Div(decimal.NewFromInt(config.SOL_DECIMALS)).Mul(decimal.NewFromFloat(solPriceUSD))
	case config.USDC_MINT:
		return amount.Div(decimal.NewFromInt(config.USDC_DECIMALS))
	default:
		return decimal.Zero
	}
}
