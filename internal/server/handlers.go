package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"swapRouter/internal/graph"
	"swapRouter/internal/model"
	"swapRouter/internal/sor"
	"swapRouter/internal/swap"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status      string  `json:"status"`
	Initialized bool    `json:"initialized"`
	Block       *uint64 `json:"block,omitempty"`
}

type pathsResponse struct {
	Paths []PathResponse `json:"paths"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr), errors.Is(err, sor.ErrInvalidInput), errors.Is(err, swap.ErrInvalidSlippage),
		errors.Is(err, swap.ErrMissingFunds), errors.Is(err, graph.ErrSameToken):
		status = http.StatusBadRequest
	case errors.Is(err, sor.ErrStateNotInitialized):
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if !s.router.IsInitialized() {
		status = "starting"
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: status, Initialized: s.router.IsInitialized(), Block: s.router.Block()})
}

// handlePaths serves GET /paths?tokenIn=&tokenOut=[&block=].
func (s *Server) handlePaths(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tokenIn, err := s.queryToken(q.Get("tokenIn"), q.Get("tokenInDecimals"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	tokenOut, err := s.queryToken(q.Get("tokenOut"), q.Get("tokenOutDecimals"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := sor.SwapOptions{}
	if raw := q.Get("block"); raw != "" {
		block, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, badRequest("invalid block: %q", raw))
			return
		}
		opts.Block = &block
	}

	paths, err := s.router.GetCandidatePaths(r.Context(), tokenIn, tokenOut, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := pathsResponse{Paths: make([]PathResponse, len(paths))}
	for i, p := range paths {
		resp.Paths[i] = newPath(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) queryToken(address, decimals string) (model.Token, error) {
	dec := uint64(18)
	if decimals != "" {
		parsed, err := strconv.ParseUint(decimals, 10, 8)
		if err != nil {
			return model.Token{}, badRequest("invalid decimals: %q", decimals)
		}
		dec = parsed
	}
	tok, err := model.NewToken(s.cfg.ChainID, address, uint8(dec), "")
	if err != nil {
		return model.Token{}, badRequest("%v", err)
	}
	return tok, nil
}

// handleSwaps serves POST /swaps.
func (s *Server) handleSwaps(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, badRequest("decode request: %v", err))
		return
	}
	resp, status, err := s.quote(r, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if resp == nil {
		writeJSON(w, status, errorResponse{Error: "no route"})
		return
	}
	writeJSON(w, status, resp)
}

func (s *Server) quote(r *http.Request, req SwapRequest) (*SwapResponse, int, error) {
	tokenIn, err := req.TokenIn.token(s.cfg.ChainID)
	if err != nil {
		return nil, 0, badRequest("tokenIn: %v", err)
	}
	tokenOut, err := req.TokenOut.token(s.cfg.ChainID)
	if err != nil {
		return nil, 0, badRequest("tokenOut: %v", err)
	}
	kind, err := model.ParseSwapKind(req.SwapKind)
	if err != nil {
		return nil, 0, badRequest("%v", err)
	}
	fixed := tokenIn
	if kind == model.GivenOut {
		fixed = tokenOut
	}
	amount, err := model.FromHumanAmount(fixed, req.Amount)
	if err != nil {
		return nil, 0, badRequest("amount: %v", err)
	}

	plan, err := s.router.GetSwaps(r.Context(), tokenIn, tokenOut, kind, amount, sor.SwapOptions{Block: req.Block})
	if err != nil {
		return nil, 0, err
	}
	if plan == nil {
		return nil, http.StatusNotFound, nil
	}
	resp := NewSwapResponse(plan)

	var query *swap.QueryOutput
	if req.Query {
		if s.caller == nil {
			return nil, 0, badRequest("on-chain query is not configured")
		}
		var block *big.Int
		if req.Block != nil {
			block = new(big.Int).SetUint64(*req.Block)
		}
		out, err := plan.Query(r.Context(), s.caller, block, senderOrZero(req.Sender))
		if err != nil {
			return nil, 0, fmt.Errorf("query swap: %w", err)
		}
		query = &out
		resp.Query = newAmountPtr(&out.Amount)
	}

	if req.Sender != "" {
		input, err := req.BuildCallInput()
		if err != nil {
			return nil, 0, badRequest("%v", err)
		}
		input.QueryOutput = query
		call, err := plan.BuildCall(input)
		if err != nil {
			return nil, 0, err
		}
		resp.WithCall(call)
	}
	return &resp, http.StatusOK, nil
}
