package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"swapRouter/internal/contracts"
	"swapRouter/internal/model"
	"swapRouter/internal/provider"
	"swapRouter/internal/sor"
)

const (
	addrDAI    = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	addrWETH   = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	addrUSDC   = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	addrUSDT   = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	addrSender = "0x1111111111111111111111111111111111111111"
)

type staticProvider struct {
	pools []model.RawPool
}

func (p staticProvider) GetPools(context.Context, provider.FetchOptions) (model.PoolsResponse, error) {
	return model.PoolsResponse{Pools: p.pools}, nil
}

func weightedRaw(n int, a, b string, decB uint8) model.RawPool {
	address := fmt.Sprintf("0x%040x", n)
	return model.RawPool{
		ID:       fmt.Sprintf("%s0002%020x", address, n),
		Address:  address,
		PoolType: "Weighted",
		SwapFee:  "0.001",
		Tokens: []model.RawPoolToken{
			{Address: a, Index: 0, Decimals: 18, Balance: "1000", Weight: "0.5"},
			{Address: b, Index: 1, Decimals: decB, Balance: "1000", Weight: "0.5"},
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	data := provider.NewDataService([]provider.PoolProvider{staticProvider{pools: []model.RawPool{
		weightedRaw(1, addrDAI, addrWETH, 18),
		weightedRaw(2, addrWETH, addrUSDC, 6),
	}}}, nil, nil, nil)
	router, err := sor.New(sor.Config{ChainID: contracts.Mainnet}, data, sor.WithMetrics(sor.NewMetrics(reg)))
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	srv, err := New(Config{ChainID: contracts.Mainnet}, router, WithGatherer(reg))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, reg
}

func postSwap(t *testing.T, ts *httptest.Server, req SwapRequest) (*http.Response, []byte) {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL+"/swaps", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, out
}

func daiToUSDC(amount string) SwapRequest {
	return SwapRequest{
		TokenIn:  TokenRequest{Address: addrDAI, Decimals: 18},
		TokenOut: TokenRequest{Address: addrUSDC, Decimals: 6},
		SwapKind: "givenIn",
		Amount:   amount,
	}
}

func TestHealthBeforeAndAfterFetch(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if health.Status != "starting" || health.Initialized {
		t.Fatalf("health = %+v", health)
	}

	if r, body := postSwap(t, ts, daiToUSDC("1")); r.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", r.StatusCode, body)
	}

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || !health.Initialized {
		t.Fatalf("health = %+v", health)
	}
}

func TestSwapsEncodesBatchSwap(t *testing.T) {
	ts, _ := newTestServer(t)
	req := daiToUSDC("1")
	req.Sender = addrSender
	req.Slippage = "1%"

	resp, body := postSwap(t, ts, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var out SwapResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SwapKind != "GivenIn" || out.ProtocolVersion != 2 || len(out.Paths) != 1 || len(out.Paths[0].Pools) != 2 {
		t.Fatalf("response = %+v", out)
	}
	if out.InputAmount.Raw != "1000000000000000000" {
		t.Fatalf("input = %+v", out.InputAmount)
	}
	if out.Call == nil || out.Call.MinAmountOut == nil {
		t.Fatalf("missing call: %s", body)
	}
	vault := contracts.AddressesFor(contracts.Mainnet).VaultV2
	if out.Call.To != vault.Hex() {
		t.Fatalf("call to %s, want %s", out.Call.To, vault.Hex())
	}
	vaultABI, err := contracts.VaultV2ABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	selector := fmt.Sprintf("0x%x", vaultABI.Methods["batchSwap"].ID)
	if !strings.HasPrefix(out.Call.Data, selector) {
		t.Fatalf("call data %s does not start with batchSwap selector %s", out.Call.Data[:10], selector)
	}
	if out.Call.Value != "0" {
		t.Fatalf("value = %s", out.Call.Value)
	}
}

func TestSwapsErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	same := daiToUSDC("1")
	same.TokenOut = same.TokenIn
	unknown := daiToUSDC("1")
	unknown.TokenOut = TokenRequest{Address: addrUSDT, Decimals: 6}
	badSlippage := daiToUSDC("1")
	badSlippage.Sender = addrSender
	badSlippage.Slippage = "150%"
	noQuery := daiToUSDC("1")
	noQuery.Query = true
	wrongDecimals := daiToUSDC("1")
	wrongDecimals.TokenIn.Decimals = 6
	noDecimals := daiToUSDC("1")
	noDecimals.TokenOut = TokenRequest{Address: addrUSDC}

	cases := []struct {
		name   string
		req    SwapRequest
		status int
	}{
		{"same token", same, http.StatusBadRequest},
		{"bad amount", daiToUSDC("one"), http.StatusBadRequest},
		{"no route", unknown, http.StatusNotFound},
		{"bad slippage", badSlippage, http.StatusBadRequest},
		{"query without chain", noQuery, http.StatusBadRequest},
		{"decimals unlike pools", wrongDecimals, http.StatusBadRequest},
		{"decimals missing", noDecimals, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := postSwap(t, ts, tc.req)
			if resp.StatusCode != tc.status {
				t.Fatalf("status %d, want %d: %s", resp.StatusCode, tc.status, body)
			}
			var e errorResponse
			if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
				t.Fatalf("error body = %s", body)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(fmt.Sprintf("%s/paths?tokenIn=%s&tokenOut=%s&tokenOutDecimals=6", ts.URL, addrDAI, addrUSDC))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out pathsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Paths) != 1 || len(out.Paths[0].Tokens) != 3 || out.Paths[0].Tokens[1] != addrWETH {
		t.Fatalf("paths = %+v", out.Paths)
	}

	bad, err := http.Get(ts.URL + "/paths?tokenIn=nope&tokenOut=" + addrUSDC)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d for invalid token", bad.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	if r, body := postSwap(t, ts, daiToUSDC("1")); r.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", r.StatusCode, body)
	}
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `sor_quotes_total{outcome="routed"} 1`) {
		t.Fatalf("metrics missing routed quote:\n%s", body)
	}
}
