package utils

// On-chain error fragments used to classify simulation failures.
const (
	JUPITER_SHARED_ROUTE_LOG = "Instruction: SharedAccountsRoute"
)
