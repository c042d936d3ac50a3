package utils

// Units
const (
	SOL_UNIT  = 1e9 // 1 SOL = 10^9 lamports
	USDC_UNIT = 1e6
)

// ShortMint abbreviates a mint address for logs, e.g. "So111111...".
func ShortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:8] + "..."
}
