// Package poolmath holds the invariant math of each supported pool family. The
// subpackages mirror the on-chain libraries integer for integer.
package poolmath

import "errors"

var (
	ErrLimitExceeded        = errors.New("amount exceeds pool limit")
	ErrInvariantDiverged    = errors.New("invariant computation diverged")
	ErrAssetBoundsExceeded  = errors.New("asset bounds exceeded")
	ErrMaxAssetsExceeded    = errors.New("max assets exceeded")
	ErrMaxInvariantExceeded = errors.New("max invariant exceeded")
	ErrSqrtFailed           = errors.New("square root failed")
)
