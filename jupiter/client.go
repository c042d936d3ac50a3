package jupiter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"arbo/logger"
	"arbo/ratelimit"
	"arbo/types"
	"arbo/utils"
)

const (
	quotePath = "/swap/v1/quote"
	swapPath  = "/swap/v1/swap-instructions"

	// Public fallback when the configured endpoint is down or unauthorized.
	liteEndpoint = "https://lite-api.jup.ag"
)

var (
	// ErrNoRoute means the aggregator found no path for the pair. The
	// endpoint that said so is healthy; do not fail it over.
	ErrNoRoute = errors.New("no route for pair")

	ErrAllEndpointsFailed = errors.New("all quote endpoints failed")
)

// Client talks to the Jupiter swap API with deterministic endpoint fallback:
// the last endpoint that served a response is tried first, endpoints that
// return 401 are retired for the process lifetime.
type Client struct {
	endpoints []string
	apiKey    string
	limiter   *ratelimit.Limiter

	mu      sync.Mutex
	working string
	dead    map[string]bool
}

func NewClient(baseURL, apiKey string, limiter *ratelimit.Limiter) *Client {
	endpoints := []string{}
	if baseURL != "" {
		endpoints = append(endpoints, baseURL)
	}
	if baseURL != liteEndpoint {
		endpoints = append(endpoints, liteEndpoint)
	}
	return &Client{
		endpoints: endpoints,
		apiKey:    apiKey,
		limiter:   limiter,
		dead:      make(map[string]bool),
	}
}

// Limiter exposes the pacing limiter so callers can open a burst scope
// around the two legs of one cycle.
func (c *Client) Limiter() *ratelimit.Limiter { return c.limiter }

// candidates returns live endpoints, the last-working one first.
func (c *Client) candidates() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.endpoints))
	if c.working != "" && !c.dead[c.working] {
		out = append(out, c.working)
	}
	for _, ep := range c.endpoints {
		if ep == c.working || c.dead[ep] {
			continue
		}
		out = append(out, ep)
	}
	return out
}

func (c *Client) markWorking(ep string) {
	c.mu.Lock()
	c.working = ep
	c.mu.Unlock()
}

func (c *Client) markDead(ep string) {
	c.mu.Lock()
	c.dead[ep] = true
	if c.working == ep {
		c.working = ""
	}
	c.mu.Unlock()
	logger.RPCLogger.Warn("Quote endpoint unauthorized, retiring it", "endpoint", ep)
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-api-key": c.apiKey}
}

// GetQuote prices one leg. onlyDirectRoutes must stay true for atomic
// cycles; multi-hop routes never fit the size ceiling anyway.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int, onlyDirectRoutes bool) (*types.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := map[string]string{
		"inputMint":        inputMint,
		"outputMint":       outputMint,
		"amount":           strconv.FormatUint(amount, 10),
		"slippageBps":      strconv.Itoa(slippageBps),
		"onlyDirectRoutes": strconv.FormatBool(onlyDirectRoutes),
	}

	var lastErr error
	for _, ep := range c.candidates() {
		var raw json.RawMessage
		err := utils.GetUrlResponse(ep+quotePath, params, c.headers(), &raw, logger.RPCLogger)
		if err == nil {
			quote := &types.Quote{}
			if uerr := json.Unmarshal(raw, quote); uerr != nil {
				return nil, fmt.Errorf("malformed quote response: %w", uerr)
			}
			quote.Raw = raw
			c.markWorking(ep)
			return quote, nil
		}

		var statusErr *utils.HTTPStatusError
		if errors.As(err, &statusErr) {
			switch statusErr.StatusCode {
			case http.StatusUnauthorized:
				c.markDead(ep)
				lastErr = err
				continue
			case http.StatusNotFound, http.StatusBadRequest:
				// The endpoint answered; there is just no route.
				c.markWorking(ep)
				return nil, ErrNoRoute
			}
		}
		// Network trouble (DNS, timeout, 5xx): fall through to the next
		// endpoint.
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrAllEndpointsFailed
	}
	return nil, fmt.Errorf("quote %s -> %s: %w", utils.ShortMint(inputMint), utils.ShortMint(outputMint), lastErr)
}

type swapInstructionsRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
	UseSharedAcc     bool            `json:"useSharedAccounts"`
	DynamicSlippage  bool            `json:"dynamicSlippage"`
}

// GetSwapInstructions exchanges a quote for executable instructions plus the
// lookup-table refs and blockhash validity bound.
func (c *Client) GetSwapInstructions(ctx context.Context, quote *types.Quote, signer string, useSharedAccounts bool) (*types.SwapInstructions, error) {
	if quote == nil || len(quote.Raw) == 0 {
		return nil, fmt.Errorf("swap instructions need a quote with its raw body")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body := swapInstructionsRequest{
		QuoteResponse:    quote.Raw,
		UserPublicKey:    signer,
		WrapAndUnwrapSol: true,
		UseSharedAcc:     useSharedAccounts,
	}

	var lastErr error
	for _, ep := range c.candidates() {
		var result types.SwapInstructions
		err := utils.PostUrlResponse(ep+swapPath, body, c.headers(), &result, logger.RPCLogger)
		if err == nil {
			if result.SwapInstruction.ProgramID == "" {
				return nil, fmt.Errorf("swap instructions response missing swapInstruction")
			}
			c.markWorking(ep)
			return &result, nil
		}

		var statusErr *utils.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			c.markDead(ep)
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrAllEndpointsFailed
	}
	return nil, fmt.Errorf("swap instructions: %w", lastErr)
}

// GetSolPriceUSDC derives the SOL/USDC mid from a 1 SOL direct quote.
func (c *Client) GetSolPriceUSDC(ctx context.Context, solMint, usdcMint string) (float64, error) {
	quote, err := c.GetQuote(ctx, solMint, usdcMint, uint64(utils.SOL_UNIT), 50, false)
	if err != nil {
		return 0, err
	}
	out := quote.OutAmountUint()
	if out == 0 {
		return 0, fmt.Errorf("zero-out SOL price quote")
	}
	return float64(out) / utils.USDC_UNIT, nil
}
