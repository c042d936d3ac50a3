package sol

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"arbo/config"
	"arbo/logger"
)

// Client wraps the Solana JSON-RPC node behind the handful of calls the
// trade path needs.
type Client struct {
	rpc *rpc.Client
}

func NewClient(rpcURL string) *Client {
	return &Client{rpc: rpc.New(rpcURL)}
}

// Blockhash is a recent blockhash plus the height at which it dies.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

func (c *Client) RecentBlockhash(ctx context.Context) (Blockhash, error) {
	resp, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return Blockhash{}, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	return Blockhash{
		Hash:                 resp.Value.Blockhash,
		LastValidBlockHeight: resp.Value.LastValidBlockHeight,
	}, nil
}

func (c *Client) CurrentBlockHeight(ctx context.Context) (uint64, error) {
	height, err := c.rpc.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("getBlockHeight failed: %w", err)
	}
	return height, nil
}

// TokenBalance returns the owner's spendable base units of mint. Native SOL
// reads the lamport balance; SPL mints read the associated token account.
func (c *Client) TokenBalance(ctx context.Context, owner solana.PublicKey, mint string) (uint64, error) {
	if mint == config.SOL_MINT {
		resp, err := c.rpc.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
		if err != nil {
			return 0, fmt.Errorf("getBalance failed: %w", err)
		}
		return resp.Value, nil
	}

	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("bad mint %q: %w", mint, err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mintKey)
	if err != nil {
		return 0, fmt.Errorf("derive token account for %s: %w", mint, err)
	}

	resp, err := c.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		// A missing token account is just a zero balance.
		return 0, nil
	}
	if resp == nil || resp.Value == nil {
		return 0, nil
	}
	amount, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token balance %q: %w", resp.Value.Amount, err)
	}
	return amount, nil
}

// SimulationResult is the subset of the simulate response the gate inspects.
type SimulationResult struct {
	Err           any
	Logs          []string
	UnitsConsumed uint64
}

func (c *Client) Simulate(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	resp, err := c.rpc.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		SigVerify:              false,
		ReplaceRecentBlockhash: true,
		Commitment:             rpc.CommitmentProcessed,
	})
	if err != nil {
		return nil, fmt.Errorf("simulateTransaction failed: %w", err)
	}
	if resp == nil || resp.Value == nil {
		return nil, nil
	}
	result := &SimulationResult{
		Err:  resp.Value.Err,
		Logs: resp.Value.Logs,
	}
	if resp.Value.UnitsConsumed != nil {
		result.UnitsConsumed = *resp.Value.UnitsConsumed
	}
	return result, nil
}

// Send submits the signed transaction with preflight disabled; the caller
// already simulated the exact bytes.
func (c *Client) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sendTransaction failed: %w", err)
	}
	return sig, nil
}

// Confirm polls the signature status until it confirms, errors on chain, or
// the confirmation window runs out.
func (c *Client) Confirm(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, config.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(config.ConfirmPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation timed out for %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}

		resp, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			logger.RPCLogger.Warn("getSignatureStatuses failed, will retry", "sig", sig, "err", err)
			continue
		}
		if resp == nil || len(resp.Value) == 0 || resp.Value[0] == nil {
			continue
		}

		status := resp.Value[0]
		if status.Err != nil {
			return fmt.Errorf("transaction %s failed on chain: %v", sig, status.Err)
		}
		if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return nil
		}
	}
}
