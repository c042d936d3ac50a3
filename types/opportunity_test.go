package types

import (
	"testing"

	"arbo/config"
)

func oppWith(t *testing.T, baseMint string, initial, final uint64) *ArbitrageOpportunity {
	t.Helper()
	intermediate := config.SOL_MINT
	if baseMint == config.SOL_MINT {
		intermediate = config.USDC_MINT
	}
	plan, err := NewExecutionPlan(baseMint, intermediate)
	if err != nil {
		t.Fatalf("NewExecutionPlan failed: %v", err)
	}
	return &ArbitrageOpportunity{
		Plan:          plan,
		Venues:        ResolvedVenues{Dex1: "Raydium", Dex2: "Orca"},
		InitialAmount: initial,
		FinalAmount:   final,
	}
}

func TestProfitBps(t *testing.T) {
	cases := []struct {
		initial, final uint64
		want           int64
	}{
		{1000000, 1200000, 2000},
		{1000000, 1000000, 0},
		{1000000, 999000, -10},
		{1000000, 1000049, 0}, // truncates toward zero
		{0, 500, 0},
	}
	for _, tc := range cases {
		opp := oppWith(t, config.USDC_MINT, tc.initial, tc.final)
		if got := opp.ProfitBps(); got != tc.want {
			t.Errorf("%d -> %d: got %d want %d", tc.initial, tc.final, got, tc.want)
		}
	}
}

func TestProfitUSDPerBaseMint(t *testing.T) {
	// 0.2 USDC profit on a USDC base.
	usdc := oppWith(t, config.USDC_MINT, 1000000, 1200000)
	if got := usdc.ProfitUSD(150).StringFixed(2); got != "0.20" {
		t.Errorf("usdc base: got %s", got)
	}

	// 0.01 SOL profit at 150 USD/SOL is 1.50 USD.
	solOpp := oppWith(t, config.SOL_MINT, 1000000000, 1010000000)
	if got := solOpp.ProfitUSD(150).StringFixed(2); got != "1.50" {
		t.Errorf("sol base: got %s", got)
	}

	// Losses come out negative.
	loss := oppWith(t, config.USDC_MINT, 1200000, 1000000)
	if got := loss.ProfitUSD(150).StringFixed(2); got != "-0.20" {
		t.Errorf("loss: got %s", got)
	}

	// Non-reference base mints have no estimate.
	other, err := NewExecutionPlan("otherBaseMint", config.SOL_MINT)
	if err != nil {
		t.Fatalf("NewExecutionPlan failed: %v", err)
	}
	opp := &ArbitrageOpportunity{Plan: other, InitialAmount: 100, FinalAmount: 200}
	if !opp.ProfitUSD(150).IsZero() {
		t.Errorf("unknown base: got %s", opp.ProfitUSD(150))
	}
}

func TestIsValid(t *testing.T) {
	opp := oppWith(t, config.USDC_MINT, 1000000, 1200000) // 2000 bps, 0.20 USD

	if !opp.IsValid(50, 0.1, 150) {
		t.Errorf("valid opportunity rejected")
	}
	if opp.IsValid(50, 0.5, 150) {
		t.Errorf("passed despite USD floor")
	}
	if opp.IsValid(2500, 0.1, 150) {
		t.Errorf("passed despite bps floor")
	}
	// Zero bps floor disables the bps clause.
	if !opp.IsValid(0, 0.1, 150) {
		t.Errorf("zero bps floor rejected")
	}
	// USD floor applies even with the bps clause disabled.
	if opp.IsValid(0, 0.5, 150) {
		t.Errorf("USD floor skipped when bps disabled")
	}
}
