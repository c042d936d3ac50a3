package trader

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gagliardetto/solana-go"

	"arbo/config"
	"arbo/logger"
	"arbo/sol"
	"arbo/types"
)

// LedgerClient is the node surface the builder and the execution gate need.
type LedgerClient interface {
	RecentBlockhash(ctx context.Context) (sol.Blockhash, error)
	CurrentBlockHeight(ctx context.Context) (uint64, error)
	ResolveLookupTables(ctx context.Context, refs []string) (map[solana.PublicKey]solana.PublicKeySlice, error)
	Simulate(ctx context.Context, tx *solana.Transaction) (*sol.SimulationResult, error)
	Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	Confirm(ctx context.Context, sig solana.Signature) error
}

// Signer covers transaction signing plus the payer identity.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(tx *solana.Transaction) error
}

const (
	FailReasonSizeOverflow = "atomic_size_overflow"
	FailReasonBuildFailed  = "build_failed"
)

// BuildFailure is the classified terminal failure of one build attempt. The
// builder never retries internally; the orchestrator decides what happens
// next.
type BuildFailure struct {
	Reason string
	Meta   map[string]any
}

func (e *BuildFailure) Error() string {
	return fmt.Sprintf("build failed (%s): %v", e.Reason, e.Meta)
}

func buildFailed(format string, args ...any) *BuildFailure {
	return &BuildFailure{
		Reason: FailReasonBuildFailed,
		Meta:   map[string]any{"message": fmt.Sprintf(format, args...)},
	}
}

// Builder assembles two legs of swap instructions into one signed versioned
// transaction bounded by the protocol size ceiling. It reads the negative
// cache to short-circuit known-oversized routes but never writes to it;
// caching the outcome is the caller's call.
type Builder struct {
	quotes QuoteProvider
	ledger LedgerClient
	signer Signer
	cache  *NegativeCache
}

func NewBuilder(quotes QuoteProvider, ledger LedgerClient, signer Signer, cache *NegativeCache) *Builder {
	return &Builder{quotes: quotes, ledger: ledger, signer: signer, cache: cache}
}

// Build turns a validated opportunity into a PreparedBundle. legs may carry
// pre-fetched instruction sets to avoid duplicate provider calls; nil slots
// are fetched here inside a burst scope. On failure the returned error is a
// *BuildFailure with reason atomic_size_overflow or build_failed.
func (b *Builder) Build(ctx context.Context, opp *types.ArbitrageOpportunity, legs [2]*types.SwapInstructions) (*types.PreparedBundle, error) {
	signerKey := b.signer.PublicKey().String()
	fetchErr := b.quotes.Limiter().Burst(func() error {
		for i := range legs {
			if legs[i] != nil {
				continue
			}
			resp, err := b.quotes.GetSwapInstructions(ctx, opp.Quotes[i], signerKey, opp.Plan.UseSharedAccounts)
			if err != nil {
				return fmt.Errorf("leg %d instructions: %w", i+1, err)
			}
			legs[i] = resp
		}
		return nil
	})
	if fetchErr != nil {
		return nil, buildFailed("%v", fetchErr)
	}

	// Most restrictive validity bound wins.
	minHeight := legs[0].LastValidBlockHeight
	if legs[1].LastValidBlockHeight > 0 && (minHeight == 0 || legs[1].LastValidBlockHeight < minHeight) {
		minHeight = legs[1].LastValidBlockHeight
	}

	// Union the lookup-table refs before resolving; a failed resolution
	// aborts the build outright since partial tables shift account indexes.
	refs := unionLookupTableRefs(legs)
	tables, err := b.ledger.ResolveLookupTables(ctx, refs)
	if err != nil {
		return nil, buildFailed("resolve lookup tables: %v", err)
	}

	routeSig := RouteSignature(opp.Plan, opp.Venues, legs)
	if hit, matched, ttl := b.cache.IsCached(routeSig, FailureSizeOverflow); hit && matched == FailureSizeOverflow {
		return nil, &BuildFailure{
			Reason: FailReasonSizeOverflow,
			Meta:   map[string]any{"cached": true, "ttl_remaining": ttl.Seconds()},
		}
	}

	instructions, err := mergeInstructions(legs)
	if err != nil {
		return nil, buildFailed("%v", err)
	}

	// Fetch the blockhash as late as possible to maximize the remaining
	// validity window of the signed bytes.
	blockhash, err := b.ledger.RecentBlockhash(ctx)
	if err != nil {
		return nil, buildFailed("recent blockhash: %v", err)
	}

	txBuilder := solana.NewTransactionBuilder().
		SetFeePayer(b.signer.PublicKey()).
		SetRecentBlockHash(blockhash.Hash).
		WithOpt(solana.TransactionAddressTables(tables))
	for _, ix := range instructions {
		txBuilder = txBuilder.AddInstruction(ix)
	}

	tx, err := txBuilder.Build()
	if err != nil {
		return nil, buildFailed("compile transaction: %v", err)
	}
	if err := b.signer.Sign(tx); err != nil {
		return nil, buildFailed("sign transaction: %v", err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, buildFailed("serialize transaction: %v", err)
	}
	if len(raw) > config.MAX_TRANSACTION_SIZE {
		logger.TradeLogger.Warn("Atomic transaction exceeds size ceiling",
			"raw_size", len(raw), "max_size", config.MAX_TRANSACTION_SIZE, "route", routeSig)
		return nil, &BuildFailure{
			Reason: FailReasonSizeOverflow,
			Meta: map[string]any{
				"raw_size":           len(raw),
				"max_size":           config.MAX_TRANSACTION_SIZE,
				"instruction_count":  len(instructions),
				"lookup_table_count": len(tables),
				"route_signature":    routeSig,
			},
		}
	}

	bundle, err := types.NewPreparedBundle(opp, legs, routeSig, minHeight, tx, len(raw))
	if err != nil {
		return nil, buildFailed("%v", err)
	}
	return bundle, nil
}

func unionLookupTableRefs(legs [2]*types.SwapInstructions) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	refs := make([]string, 0, 4)
	for _, leg := range legs {
		for _, ref := range leg.AddressLookupTableAddresses {
			if seen.Add(ref) {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// mergeInstructions flattens both legs into the atomic order: deduplicated
// setup instructions, leg 1 swap, leg 2 swap, deduplicated cleanups. First
// occurrence wins and relative order is preserved.
func mergeInstructions(legs [2]*types.SwapInstructions) ([]solana.Instruction, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]solana.Instruction, 0, 8)

	appendUnique := func(wire types.Instruction) error {
		key := instructionKey(wire)
		if !seen.Add(key) {
			return nil
		}
		ix, err := convertInstruction(wire)
		if err != nil {
			return err
		}
		out = append(out, ix)
		return nil
	}

	for _, leg := range legs {
		for _, wire := range leg.SetupInstructions {
			if err := appendUnique(wire); err != nil {
				return nil, err
			}
		}
	}
	for i, leg := range legs {
		ix, err := convertInstruction(leg.SwapInstruction)
		if err != nil {
			return nil, fmt.Errorf("leg %d swap instruction: %w", i+1, err)
		}
		out = append(out, ix)
	}
	for _, leg := range legs {
		if leg.CleanupInstruction == nil {
			continue
		}
		if err := appendUnique(*leg.CleanupInstruction); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// instructionKey hashes program id, the ordered account list with its flags,
// and the payload, so byte-identical instructions collapse to one.
func instructionKey(ix types.Instruction) string {
	h := sha256.New()
	h.Write([]byte(ix.ProgramID))
	h.Write([]byte{'|'})
	for _, acc := range ix.Accounts {
		h.Write([]byte(acc.Pubkey))
		flags := byte(0)
		if acc.IsSigner {
			flags |= 1
		}
		if acc.IsWritable {
			flags |= 2
		}
		h.Write([]byte{flags})
	}
	h.Write([]byte{'|'})
	h.Write([]byte(ix.Data))
	return hex.EncodeToString(h.Sum(nil))
}

func convertInstruction(wire types.Instruction) (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(wire.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("bad program id %q: %w", wire.ProgramID, err)
	}

	accounts := make(solana.AccountMetaSlice, 0, len(wire.Accounts))
	for _, acc := range wire.Accounts {
		key, err := solana.PublicKeyFromBase58(acc.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("bad account %q: %w", acc.Pubkey, err)
		}
		accounts = append(accounts, &solana.AccountMeta{
			PublicKey:  key,
			IsSigner:   acc.IsSigner,
			IsWritable: acc.IsWritable,
		})
	}

	data, err := base64.StdEncoding.DecodeString(wire.Data)
	if err != nil {
		return nil, fmt.Errorf("bad instruction data: %w", err)
	}

	return solana.NewInstruction(programID, accounts, data), nil
}
