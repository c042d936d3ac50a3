package trader

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"arbo/config"
	"arbo/sol"
	"arbo/types"
)

type fakeLedger struct {
	blockhash    sol.Blockhash
	blockhashErr error
	height       uint64
	tables       map[solana.PublicKey]solana.PublicKeySlice
	resolveErr   error
	resolvedRefs []string

	simResult  *sol.SimulationResult
	simErr     error
	simCalls   int
	onSimulate func()

	sendSig    solana.Signature
	sendErr    error
	sendCalls  int
	confirmErr error
}

func (l *fakeLedger) RecentBlockhash(ctx context.Context) (sol.Blockhash, error) {
	if l.blockhashErr != nil {
		return sol.Blockhash{}, l.blockhashErr
	}
	return l.blockhash, nil
}

func (l *fakeLedger) CurrentBlockHeight(ctx context.Context) (uint64, error) {
	return l.height, nil
}

func (l *fakeLedger) ResolveLookupTables(ctx context.Context, refs []string) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	l.resolvedRefs = refs
	if l.resolveErr != nil {
		return nil, l.resolveErr
	}
	if l.tables == nil {
		return map[solana.PublicKey]solana.PublicKeySlice{}, nil
	}
	return l.tables, nil
}

func (l *fakeLedger) Simulate(ctx context.Context, tx *solana.Transaction) (*sol.SimulationResult, error) {
	l.simCalls++
	if l.onSimulate != nil {
		l.onSimulate()
	}
	if l.simErr != nil {
		return nil, l.simErr
	}
	return l.simResult, nil
}

func (l *fakeLedger) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	l.sendCalls++
	if l.sendErr != nil {
		return solana.Signature{}, l.sendErr
	}
	return l.sendSig, nil
}

func (l *fakeLedger) Confirm(ctx context.Context, sig solana.Signature) error {
	return l.confirmErr
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		blockhash: sol.Blockhash{Hash: solana.Hash{1}, LastValidBlockHeight: 1000},
		height:    100,
		simResult: &sol.SimulationResult{},
		sendSig:   solana.Signature{7},
	}
}

func wireIx(programID string, data []byte) types.Instruction {
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{Pubkey: solana.SysVarRentPubkey.String(), IsSigner: false, IsWritable: false},
		},
		Data: base64.StdEncoding.EncodeToString(data),
	}
}

func builderLegs(height1, height2 uint64) [2]*types.SwapInstructions {
	setup := wireIx(solana.SystemProgramID.String(), []byte{1})
	cleanup := wireIx(solana.TokenProgramID.String(), []byte{9})
	return [2]*types.SwapInstructions{
		{
			SetupInstructions:    []types.Instruction{setup},
			SwapInstruction:      wireIx(solana.TokenProgramID.String(), []byte{2}),
			CleanupInstruction:   &cleanup,
			LastValidBlockHeight: height1,
		},
		{
			SetupInstructions:    []types.Instruction{setup},
			SwapInstruction:      wireIx(solana.TokenProgramID.String(), []byte{3}),
			CleanupInstruction:   &cleanup,
			LastValidBlockHeight: height2,
		},
	}
}

func builderOpp(t *testing.T) *types.ArbitrageOpportunity {
	t.Helper()
	return &types.ArbitrageOpportunity{
		Plan:          usdcSolPlan(t),
		Venues:        types.ResolvedVenues{Dex1: "Raydium", Dex2: "Orca"},
		Quotes:        [2]*types.Quote{{}, {}},
		InitialAmount: 1000000,
		FinalAmount:   1200000,
		Timestamp:     time.Now(),
	}
}

func TestBuildProducesSignedBundle(t *testing.T) {
	wallet := sol.NewWallet()
	ledger := newFakeLedger()
	b := NewBuilder(newFakeQuotes(), ledger, wallet, NewNegativeCache())

	opp := builderOpp(t)
	legs := builderLegs(500, 400)

	bundle, err := b.Build(context.Background(), opp, legs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if bundle.MinLastValidBlockHeight != 400 {
		t.Errorf("min height: got %d want 400", bundle.MinLastValidBlockHeight)
	}
	if bundle.RawSize <= 0 || bundle.RawSize > config.MAX_TRANSACTION_SIZE {
		t.Errorf("raw size out of range: %d", bundle.RawSize)
	}
	if len(bundle.Tx.Signatures) == 0 || bundle.Tx.Signatures[0].IsZero() {
		t.Errorf("transaction not signed")
	}
	want := RouteSignature(opp.Plan, opp.Venues, legs)
	if bundle.RouteSignature != want {
		t.Errorf("route signature: got %s want %s", bundle.RouteSignature, want)
	}
}

func TestBuildMinHeightIgnoresZero(t *testing.T) {
	b := NewBuilder(newFakeQuotes(), newFakeLedger(), sol.NewWallet(), NewNegativeCache())

	bundle, err := b.Build(context.Background(), builderOpp(t), builderLegs(0, 400))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if bundle.MinLastValidBlockHeight != 400 {
		t.Errorf("min height: got %d want 400", bundle.MinLastValidBlockHeight)
	}
}

func TestBuildRejectsOversizedTransaction(t *testing.T) {
	b := NewBuilder(newFakeQuotes(), newFakeLedger(), sol.NewWallet(), NewNegativeCache())

	legs := builderLegs(500, 400)
	legs[0].SwapInstruction = wireIx(solana.TokenProgramID.String(), make([]byte, 2000))

	_, err := b.Build(context.Background(), builderOpp(t), legs)
	var failure *BuildFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *BuildFailure, got %v", err)
	}
	if failure.Reason != FailReasonSizeOverflow {
		t.Fatalf("reason: got %s want %s", failure.Reason, FailReasonSizeOverflow)
	}
	rawSize, ok := failure.Meta["raw_size"].(int)
	if !ok || rawSize <= config.MAX_TRANSACTION_SIZE {
		t.Errorf("raw_size meta: %v", failure.Meta["raw_size"])
	}
	if failure.Meta["max_size"] != config.MAX_TRANSACTION_SIZE {
		t.Errorf("max_size meta: %v", failure.Meta["max_size"])
	}
	if sig, _ := failure.Meta["route_signature"].(string); sig == "" {
		t.Errorf("overflow failure missing route_signature meta")
	}
}

func TestBuildShortCircuitsOnCachedOverflow(t *testing.T) {
	cache := NewNegativeCache()
	b := NewBuilder(newFakeQuotes(), newFakeLedger(), sol.NewWallet(), cache)

	opp := builderOpp(t)
	legs := builderLegs(500, 400)
	cache.Cache(RouteSignature(opp.Plan, opp.Venues, legs), FailureSizeOverflow)

	_, err := b.Build(context.Background(), opp, legs)
	var failure *BuildFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *BuildFailure, got %v", err)
	}
	if failure.Reason != FailReasonSizeOverflow {
		t.Fatalf("reason: got %s", failure.Reason)
	}
	if failure.Meta["cached"] != true {
		t.Errorf("expected cached meta, got %v", failure.Meta)
	}
}

func TestBuildFailsWhenLookupTablesUnresolvable(t *testing.T) {
	ledger := newFakeLedger()
	ledger.resolveErr = errors.New("account not found")
	b := NewBuilder(newFakeQuotes(), ledger, sol.NewWallet(), NewNegativeCache())

	legs := builderLegs(500, 400)
	legs[0].AddressLookupTableAddresses = []string{solana.SysVarClockPubkey.String()}

	_, err := b.Build(context.Background(), builderOpp(t), legs)
	var failure *BuildFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *BuildFailure, got %v", err)
	}
	if failure.Reason != FailReasonBuildFailed {
		t.Fatalf("reason: got %s want %s", failure.Reason, FailReasonBuildFailed)
	}
	if msg, _ := failure.Meta["message"].(string); !strings.Contains(msg, "resolve lookup tables") {
		t.Errorf("message meta: %v", failure.Meta["message"])
	}
}

func TestMergeInstructionsDedupsFirstOccurrence(t *testing.T) {
	legs := builderLegs(500, 400)
	extraSetup := wireIx(solana.SystemProgramID.String(), []byte{4})
	legs[1].SetupInstructions = append(legs[1].SetupInstructions, extraSetup)

	merged, err := mergeInstructions(legs)
	if err != nil {
		t.Fatalf("mergeInstructions failed: %v", err)
	}
	// Shared setup once, leg 2's extra setup, both swaps, shared cleanup once.
	if len(merged) != 5 {
		t.Fatalf("instruction count: got %d want 5", len(merged))
	}
	data0, _ := merged[0].Data()
	data1, _ := merged[1].Data()
	data2, _ := merged[2].Data()
	data3, _ := merged[3].Data()
	data4, _ := merged[4].Data()
	if data0[0] != 1 || data1[0] != 4 {
		t.Errorf("setup order wrong: %v %v", data0, data1)
	}
	if data2[0] != 2 || data3[0] != 3 {
		t.Errorf("swap order wrong: %v %v", data2, data3)
	}
	if data4[0] != 9 {
		t.Errorf("cleanup wrong: %v", data4)
	}
}

func TestMergeInstructionsKeepsDistinctPayloads(t *testing.T) {
	legs := builderLegs(500, 400)
	// Same program, different payload bytes. Both must survive.
	legs[1].SetupInstructions = []types.Instruction{wireIx(solana.SystemProgramID.String(), []byte{1, 1})}

	merged, err := mergeInstructions(legs)
	if err != nil {
		t.Fatalf("mergeInstructions failed: %v", err)
	}
	if len(merged) != 5 {
		t.Fatalf("instruction count: got %d want 5", len(merged))
	}
}

func TestUnionLookupTableRefs(t *testing.T) {
	legs := builderLegs(500, 400)
	legs[0].AddressLookupTableAddresses = []string{"tableA", "tableB"}
	legs[1].AddressLookupTableAddresses = []string{"tableB", "tableC"}

	refs := unionLookupTableRefs(legs)
	if len(refs) != 3 || refs[0] != "tableA" || refs[1] != "tableB" || refs[2] != "tableC" {
		t.Errorf("refs: %v", refs)
	}
}
