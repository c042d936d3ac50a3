package types

// SkipReason is the fixed vocabulary of reject causes. Tallies are keyed by
// these values so downstream dashboards never see free-form strings.
type SkipReason string

const (
	SkipZeroBalance SkipReason = "zero_balance"

	SkipTimeoutLeg1  SkipReason = "timeout_leg1"
	SkipNoQuoteLeg1  SkipReason = "no_quote_leg1"
	SkipMultiHopLeg1 SkipReason = "multi_hop_leg1"
	SkipUnknownDex1  SkipReason = "unknown_dex1"

	SkipTimeoutLeg2  SkipReason = "timeout_leg2"
	SkipNoQuoteLeg2  SkipReason = "no_quote_leg2"
	SkipMultiHopLeg2 SkipReason = "multi_hop_leg2"
	SkipUnknownDex2  SkipReason = "unknown_dex2"

	SkipSameDex      SkipReason = "same_dex"
	SkipHighImpact   SkipReason = "high_impact"
	SkipLowProfitUSD SkipReason = "low_profit_usd"
	SkipLowProfitBps SkipReason = "low_profit_bps"

	SkipSwapInstructionsFailed SkipReason = "swap_instructions_failed"
	SkipCacheHitSize           SkipReason = "cache_hit_size"
	SkipSizeOverflow           SkipReason = "vt_size_overflow"
	SkipBuildFailed            SkipReason = "vt_build_failed"

	SkipSimRPCNone     SkipReason = "sim_rpc_none"
	SkipSimInvalidType SkipReason = "sim_invalid_type"
	SkipSimErr         SkipReason = "sim_err"

	SkipTimeoutOther SkipReason = "timeout_other"
)

// ScanStats accumulates the outcome of one inline scan pass.
type ScanStats struct {
	Candidates int
	Successes  int
	Errors     int
	Skips      map[SkipReason]int

	// Diagnostic flags for "why did nothing happen" triage.
	HadFundablePlans bool
	DidAnyQuoteCall  bool
	DidCandidateFlow bool
}

func NewScanStats() *ScanStats {
	return &ScanStats{Skips: make(map[SkipReason]int)}
}

// Skip increments the tally for reason, inserting the key on first use.
func (s *ScanStats) Skip(reason SkipReason) {
	s.Skips[reason]++
}

func (s *ScanStats) SkipCount(reason SkipReason) int {
	return s.Skips[reason]
}

func (s *ScanStats) TotalSkips() int {
	total := 0
	for _, n := range s.Skips {
		total += n
	}
	return total
}
