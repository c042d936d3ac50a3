package types

import (
	"fmt"
)

// ExecutionLeg is one swap in a cycle. Only direct (single-hop) legs are
// executable; multi-hop legs never fit the atomic size ceiling.
type ExecutionLeg struct {
	FromMint string
	ToMint   string
	MaxHops  int
}

func NewExecutionLeg(fromMint, toMint string, maxHops int) (ExecutionLeg, error) {
	if fromMint == "" || toMint == "" {
		return ExecutionLeg{}, fmt.Errorf("leg needs both mints")
	}
	if fromMint == toMint {
		return ExecutionLeg{}, fmt.Errorf("leg cannot swap %s into itself", fromMint)
	}
	if maxHops != 1 {
		return ExecutionLeg{}, fmt.Errorf("only single-hop legs are executable, got maxHops=%d", maxHops)
	}
	return ExecutionLeg{FromMint: fromMint, ToMint: toMint, MaxHops: maxHops}, nil
}

// ExecutionPlan is a 2-leg round trip A -> B -> A. A plan is immutable after
// construction; anything discovered during validation (venues, quotes) lives
// on the opportunity, never here.
type ExecutionPlan struct {
	CycleMints        [3]string
	Legs              [2]ExecutionLeg
	Atomic            bool
	UseSharedAccounts bool
}

// NewExecutionPlan builds the canonical base->intermediate->base plan.
func NewExecutionPlan(baseMint, intermediateMint string) (*ExecutionPlan, error) {
	leg1, err := NewExecutionLeg(baseMint, intermediateMint, 1)
	if err != nil {
		return nil, fmt.Errorf("leg 1: %w", err)
	}
	leg2, err := NewExecutionLeg(intermediateMint, baseMint, 1)
	if err != nil {
		return nil, fmt.Errorf("leg 2: %w", err)
	}
	return &ExecutionPlan{
		CycleMints:        [3]string{baseMint, intermediateMint, baseMint},
		Legs:              [2]ExecutionLeg{leg1, leg2},
		Atomic:            true,
		UseSharedAccounts: false,
	}, nil
}

func (p *ExecutionPlan) BaseMint() string         { return p.CycleMints[0] }
func (p *ExecutionPlan) IntermediateMint() string { return p.CycleMints[1] }

// ResolvedVenues is the per-validation venue assignment for the two legs.
// It is produced fresh on every validation pass so concurrent validations of
// the same plan never see each other's venues.
type ResolvedVenues struct {
	Dex1 string
	Dex2 string
}

func (v ResolvedVenues) CrossVenue() bool {
	return v.Dex1 != "" && v.Dex2 != "" && v.Dex1 != v.Dex2
}
