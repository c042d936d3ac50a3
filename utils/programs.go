package utils

// AMM program IDs we recognize and map to a venue name. Quotes routed
// through anything else resolve to a placeholder and are not tradable.
const (
	RAYDIUM_AMM_PROGRAM    = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	ORCA_SWAP_PROGRAM      = "9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP"
	ORCA_WHIRLPOOL_PROGRAM = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	RAYDIUM_CLMM_PROGRAM   = "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"
)

var knownVenues = map[string]string{
	RAYDIUM_AMM_PROGRAM:    "Raydium",
	ORCA_SWAP_PROGRAM:      "Orca",
	ORCA_WHIRLPOOL_PROGRAM: "Orca Whirlpool",
	RAYDIUM_CLMM_PROGRAM:   "Raydium CLMM",
}

// VenueName maps an AMM program ID to its venue name. Unknown programs get
// an abbreviated placeholder; callers must treat ok=false as unresolved even
// though a non-empty name is returned.
func VenueName(programID string) (string, bool) {
	if name, ok := knownVenues[programID]; ok {
		return name, true
	}
	return ShortMint(programID), false
}
