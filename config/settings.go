package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// BaseToken is one funding token the finder cycles through.
type BaseToken struct {
	Mint   string `mapstructure:"mint"`
	Symbol string `mapstructure:"symbol"`
	// Amount of the base token (in base units) committed per leg-1 quote.
	Amount   uint64 `mapstructure:"amount"`
	Decimals int    `mapstructure:"decimals"`
}

// Settings is the runtime configuration, read once from config.yaml and the
// environment at startup.
type Settings struct {
	RPCURL     string
	JupiterURL string
	// Optional Jupiter API key, sent as x-api-key when set.
	JupiterAPIKey string
	// Base58 private key of the fee payer / signer.
	WalletKey string

	BaseTokens []BaseToken
	// Intermediate mints to cycle through per base token.
	TargetMints []string

	SlippageBps  int
	MinProfitUSD float64
	MinProfitBps int
	SOLPriceUSD  float64
	MaxRetries   int
	ScanInterval time.Duration
	QuotesPerSec float64
}

func Load() (*Settings, error) {
	viper.SetDefault("trader.slippage-bps", DEFAULT_SLIPPAGE_BPS)
	viper.SetDefault("trader.min-profit-bps", DEFAULT_MIN_PROFIT_BPS)
	viper.SetDefault("trader.max-retries", DEFAULT_MAX_RETRIES)
	viper.SetDefault("trader.scan-interval", "3s")
	viper.SetDefault("trader.quotes-per-sec", 8.0)
	viper.SetDefault("jupiter.url", "https://api.jup.ag")

	s := &Settings{
		RPCURL:        viper.GetString("solana.rpc-url"),
		JupiterURL:    viper.GetString("jupiter.url"),
		JupiterAPIKey: viper.GetString("JUPITER_API_KEY"),
		WalletKey:     viper.GetString("WALLET_PRIVATE_KEY"),
		TargetMints:   viper.GetStringSlice("trader.target-mints"),
		SlippageBps:   viper.GetInt("trader.slippage-bps"),
		MinProfitUSD:  viper.GetFloat64("trader.min-profit-usd"),
		MinProfitBps:  viper.GetInt("trader.min-profit-bps"),
		SOLPriceUSD:   viper.GetFloat64("trader.sol-price-usd"),
		MaxRetries:    viper.GetInt("trader.max-retries"),
		ScanInterval:  viper.GetDuration("trader.scan-interval"),
		QuotesPerSec:  viper.GetFloat64("trader.quotes-per-sec"),
	}

	if err := viper.UnmarshalKey("trader.base-tokens", &s.BaseTokens); err != nil {
		return nil, fmt.Errorf("parse trader.base-tokens: %w", err)
	}
	for _, bt := range s.BaseTokens {
		if bt.Mint == "" || bt.Amount == 0 {
			return nil, fmt.Errorf("base token needs mint and amount: %+v", bt)
		}
	}

	if s.RPCURL == "" {
		return nil, fmt.Errorf("solana.rpc-url is required")
	}
	return s, nil
}
