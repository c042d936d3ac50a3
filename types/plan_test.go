package types

import (
	"testing"

	"arbo/config"
)

func TestNewExecutionLegRejectsBadInput(t *testing.T) {
	if _, err := NewExecutionLeg("", "mintB", 1); err == nil {
		t.Errorf("empty from mint accepted")
	}
	if _, err := NewExecutionLeg("mintA", "", 1); err == nil {
		t.Errorf("empty to mint accepted")
	}
	if _, err := NewExecutionLeg("mintA", "mintA", 1); err == nil {
		t.Errorf("self swap accepted")
	}
	if _, err := NewExecutionLeg("mintA", "mintB", 2); err == nil {
		t.Errorf("multi-hop leg accepted")
	}
	if _, err := NewExecutionLeg("mintA", "mintB", 1); err != nil {
		t.Errorf("valid leg rejected: %v", err)
	}
}

func TestNewExecutionPlanCycle(t *testing.T) {
	plan, err := NewExecutionPlan(config.USDC_MINT, config.SOL_MINT)
	if err != nil {
		t.Fatalf("NewExecutionPlan failed: %v", err)
	}
	if plan.CycleMints[0] != config.USDC_MINT || plan.CycleMints[1] != config.SOL_MINT || plan.CycleMints[2] != config.USDC_MINT {
		t.Errorf("cycle: %v", plan.CycleMints)
	}
	if plan.Legs[0].FromMint != config.USDC_MINT || plan.Legs[0].ToMint != config.SOL_MINT {
		t.Errorf("leg 1: %+v", plan.Legs[0])
	}
	if plan.Legs[1].FromMint != config.SOL_MINT || plan.Legs[1].ToMint != config.USDC_MINT {
		t.Errorf("leg 2: %+v", plan.Legs[1])
	}
	if !plan.Atomic || plan.UseSharedAccounts {
		t.Errorf("defaults: atomic=%v shared=%v", plan.Atomic, plan.UseSharedAccounts)
	}
	if plan.BaseMint() != config.USDC_MINT || plan.IntermediateMint() != config.SOL_MINT {
		t.Errorf("accessors: %s %s", plan.BaseMint(), plan.IntermediateMint())
	}
}

func TestNewExecutionPlanRejectsDegenerateCycle(t *testing.T) {
	if _, err := NewExecutionPlan(config.USDC_MINT, config.USDC_MINT); err == nil {
		t.Errorf("base == intermediate accepted")
	}
}

func TestCrossVenue(t *testing.T) {
	cases := []struct {
		v    ResolvedVenues
		want bool
	}{
		{ResolvedVenues{"Raydium", "Orca"}, true},
		{ResolvedVenues{"Raydium", "Raydium"}, false},
		{ResolvedVenues{"", "Orca"}, false},
		{ResolvedVenues{"Raydium", ""}, false},
		{ResolvedVenues{}, false},
	}
	for _, tc := range cases {
		if got := tc.v.CrossVenue(); got != tc.want {
			t.Errorf("%+v: got %v want %v", tc.v, got, tc.want)
		}
	}
}
