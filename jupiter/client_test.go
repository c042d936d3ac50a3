package jupiter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"arbo/logger"
	"arbo/ratelimit"
	"arbo/types"
)

func init() {
	logger.SetConsoleEnabled(false)
	logger.InitLogs("jupiter_test")
}

func newTestClient(url string) *Client {
	c := NewClient(url, "", ratelimit.New(1000, 10))
	// Pin the test server as the only endpoint.
	c.endpoints = []string{url}
	return c
}

func quoteBody(in, out string, inAmount, outAmount string) map[string]any {
	return map[string]any{
		"inputMint":      in,
		"outputMint":     out,
		"inAmount":       inAmount,
		"outAmount":      outAmount,
		"priceImpactPct": "0.01",
		"routePlan": []map[string]any{
			{
				"swapInfo": map[string]any{
					"ammKey":     "amm1",
					"label":      "Raydium",
					"inputMint":  in,
					"outputMint": out,
				},
				"percent": 100,
			},
		},
	}
}

func TestGetQuote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/swap/v1/quote" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("onlyDirectRoutes") != "true" {
			t.Errorf("onlyDirectRoutes not set")
		}
		if r.URL.Query().Get("amount") != "1000000" {
			t.Errorf("unexpected amount: %s", r.URL.Query().Get("amount"))
		}
		_ = json.NewEncoder(w).Encode(quoteBody("mintA", "mintB", "1000000", "2000000"))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	quote, err := c.GetQuote(context.Background(), "mintA", "mintB", 1000000, 50, true)
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if quote.OutAmountUint() != 2000000 {
		t.Errorf("unexpected outAmount: %s", quote.OutAmount)
	}
	if len(quote.Raw) == 0 {
		t.Errorf("raw quote body not retained")
	}
	if len(quote.RoutePlan) != 1 || quote.RoutePlan[0].SwapInfo.Label != "Raydium" {
		t.Errorf("route plan not decoded: %+v", quote.RoutePlan)
	}
}

func TestGetQuoteNoRoute(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no route"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	_, err := c.GetQuote(context.Background(), "mintA", "mintB", 1, 50, true)
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}

	// A no-route answer must keep the endpoint alive.
	if len(c.candidates()) == 0 {
		t.Errorf("endpoint retired after no-route answer")
	}
}

func TestGetQuoteUnauthorizedRetiresEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	if _, err := c.GetQuote(context.Background(), "mintA", "mintB", 1, 50, true); err == nil {
		t.Fatalf("expected error from unauthorized endpoint")
	}
	if len(c.candidates()) != 0 {
		t.Errorf("unauthorized endpoint not retired: %v", c.candidates())
	}
}

func TestGetQuoteFallsBackToNextEndpoint(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(quoteBody("mintA", "mintB", "5", "6"))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer bad.Close()

	c := newTestClient(bad.URL)
	c.endpoints = []string{bad.URL, good.URL}

	quote, err := c.GetQuote(context.Background(), "mintA", "mintB", 5, 50, true)
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if quote.OutAmountUint() != 6 {
		t.Errorf("unexpected outAmount: %s", quote.OutAmount)
	}

	// The good endpoint is now preferred.
	if cands := c.candidates(); cands[0] != good.URL {
		t.Errorf("working endpoint not promoted: %v", cands)
	}
}

func TestGetSwapInstructions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/swap/v1/swap-instructions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if _, ok := req["quoteResponse"]; !ok {
			t.Errorf("quoteResponse not echoed")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"setupInstructions": []map[string]any{},
			"swapInstruction": map[string]any{
				"programId": "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",
				"accounts":  []map[string]any{{"pubkey": "acc1", "isSigner": false, "isWritable": true}},
				"data":      "AQID",
			},
			"addressLookupTableAddresses": []string{"tbl1"},
			"lastValidBlockHeight":        12345,
		})
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	quote := &types.Quote{Raw: json.RawMessage(`{"inAmount":"1"}`)}
	swap, err := c.GetSwapInstructions(context.Background(), quote, "signerpubkey", false)
	if err != nil {
		t.Fatalf("GetSwapInstructions failed: %v", err)
	}
	if swap.LastValidBlockHeight != 12345 {
		t.Errorf("unexpected lastValidBlockHeight: %d", swap.LastValidBlockHeight)
	}
	if len(swap.AddressLookupTableAddresses) != 1 {
		t.Errorf("ALT refs not decoded")
	}
	if swap.SwapInstruction.Accounts[0].Pubkey != "acc1" {
		t.Errorf("accounts not decoded: %+v", swap.SwapInstruction)
	}
}
