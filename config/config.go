package config

import "time"

// Path config
const (
	LogPath    = "./logs/"
	ConfigPath = "./"
)

// Network config
const (
	QuoteTimeout   = 5 * time.Second
	ConfirmTimeout = 30 * time.Second
	ConfirmPoll    = 500 * time.Millisecond
)

// Execution config
const (
	// Solana protocol limit for a serialized transaction. Not configurable.
	MAX_TRANSACTION_SIZE = 1232

	// Per-leg price impact ceiling in percent. Legs above this are treated
	// as paper liquidity and skipped.
	MAX_PRICE_IMPACT_PCT = 5.0

	DEFAULT_SLIPPAGE_BPS   = 50
	DEFAULT_MIN_PROFIT_BPS = 50
	DEFAULT_MAX_RETRIES    = 10

	// How close (in blocks) to a bundle's lastValidBlockHeight a send is
	// still allowed. ~60s at 2.5 blocks/sec.
	EXPIRY_REBUILD_HEADROOM_BLOCKS = 150
)

// Negative cache config
const (
	NEGATIVE_CACHE_TTL_DEFAULT       = 600 * time.Second
	NEGATIVE_CACHE_TTL_SIZE_OVERFLOW = 600 * time.Second
	NEGATIVE_CACHE_TTL_RUNTIME_6024  = 600 * time.Second
)

// Well-known mints
const (
	SOL_MINT  = "So11111111111111111111111111111111111111112"
	USDC_MINT = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

	SOL_DECIMALS  = 1e9
	USDC_DECIMALS = 1e6
)
