package trader

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"

	"arbo/config"
	"arbo/db"
	"arbo/jupiter"
	"arbo/logger"
	"arbo/ratelimit"
	"arbo/sol"
	"arbo/types"
	"arbo/utils"
)

// RunTraderCmd wires the full stack for one mode and drives the scan loop
// until interrupted.
func RunTraderCmd(mode Mode) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	var wallet *sol.Wallet
	if settings.WalletKey != "" {
		wallet, err = sol.LoadWallet(settings.WalletKey)
		if err != nil {
			return err
		}
	} else {
		if mode != ModeScan {
			return fmt.Errorf("mode %q needs WALLET_PRIVATE_KEY", mode)
		}
		// Scan mode only prices routes; an ephemeral key still lets the
		// aggregator shape instructions.
		wallet = sol.NewWallet()
	}
	logger.GlobalLogger.Info("Wallet loaded", "pubkey", wallet.PublicKey())

	limiter := ratelimit.New(settings.QuotesPerSec, 2)
	quotes := jupiter.NewClient(settings.JupiterURL, settings.JupiterAPIKey, limiter)
	ledger := sol.NewClient(settings.RPCURL)
	cache := NewNegativeCache()

	solPrice := settings.SOLPriceUSD
	if solPrice == 0 {
		priceCtx, cancel := context.WithTimeout(context.Background(), config.QuoteTimeout)
		solPrice, err = quotes.GetSolPriceUSDC(priceCtx, config.SOL_MINT, config.USDC_MINT)
		cancel()
		if err != nil {
			return fmt.Errorf("no SOL price configured and lookup failed: %w", err)
		}
		logger.GlobalLogger.Info("SOL price resolved from aggregator", "usd", solPrice)
	}

	finder := NewFinder(quotes, Thresholds{
		SlippageBps:  settings.SlippageBps,
		MinProfitBps: settings.MinProfitBps,
		MinProfitUSD: settings.MinProfitUSD,
		SOLPriceUSD:  solPrice,
	})
	builder := NewBuilder(quotes, ledger, wallet, cache)
	risk := NewRiskManager(RiskLimits{
		MaxActivePositions: 1,
		MaxPositionPct:     1.0,
		MinProfitUSD:       settings.MinProfitUSD,
		MinProfitBps:       settings.MinProfitBps,
		MaxSlippageBps:     settings.SlippageBps,
	})

	var journal Journal
	if mode != ModeScan {
		journal = db.NewJournal(db.NewClickhouse())
	}

	tr := NewTrader(mode, finder, builder, ledger, cache, risk, journal, settings.MaxRetries)

	plans, amounts, err := plansFromSettings(settings)
	if err != nil {
		return err
	}
	logger.GlobalLogger.Info("Plans configured", "count", len(plans), "mode", mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	funding := fundingFor(ctx, ledger, wallet.PublicKey(), risk, amounts)

	ticker := time.NewTicker(settings.ScanInterval)
	defer ticker.Stop()

	for {
		tr.InlineScan(ctx, plans, funding)

		select {
		case <-ctx.Done():
			logger.GlobalLogger.Info("Shutting down trader loop")
			return nil
		case <-ticker.C:
		}
	}
}

// balanceSource reports the wallet's spendable amount for a mint.
type balanceSource interface {
	TokenBalance(ctx context.Context, owner solana.PublicKey, mint string) (uint64, error)
}

// fundingFor resolves the amount to trade for a base mint. An RPC failure
// falls back to the configured amount and seeds the risk balance with it,
// so the fallback stays tradeable.
func fundingFor(ctx context.Context, balances balanceSource, owner solana.PublicKey, risk *RiskManager, amounts map[string]uint64) func(string) uint64 {
	return func(baseMint string) uint64 {
		configured := amounts[baseMint]
		balance, err := balances.TokenBalance(ctx, owner, baseMint)
		if err != nil {
			logger.RPCLogger.Warn("Balance lookup failed, assuming configured amount",
				"mint", utils.ShortMint(baseMint), "err", err)
			risk.SetBalance(baseMint, configured)
			return configured
		}
		risk.SetBalance(baseMint, balance)
		if balance < configured {
			return 0
		}
		return configured
	}
}

// plansFromSettings expands every base token against every target mint into
// a round-trip plan.
func plansFromSettings(settings *config.Settings) ([]*types.ExecutionPlan, map[string]uint64, error) {
	if len(settings.BaseTokens) == 0 || len(settings.TargetMints) == 0 {
		return nil, nil, fmt.Errorf("config needs trader.base-tokens and trader.target-mints")
	}

	amounts := make(map[string]uint64, len(settings.BaseTokens))
	plans := make([]*types.ExecutionPlan, 0, len(settings.BaseTokens)*len(settings.TargetMints))
	for _, base := range settings.BaseTokens {
		amounts[base.Mint] = base.Amount
		for _, target := range settings.TargetMints {
			if target == base.Mint {
				continue
			}
			plan, err := types.NewExecutionPlan(base.Mint, target)
			if err != nil {
				return nil, nil, fmt.Errorf("plan %s -> %s: %w", base.Mint, target, err)
			}
			plans = append(plans, plan)
		}
	}
	return plans, amounts, nil
}
